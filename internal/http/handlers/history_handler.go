// Loan history HTTP handlers.
//
//   - GET /rooms/{id}/history  (admin)
//   - GET /users/{id}/history  (self or admin)
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lfarias/go-keys-backend/internal/services"
)

// HistoryAPI is the slice of HistoryService the handlers need.
type HistoryAPI interface {
	ByRoom(ctx context.Context, actor services.Identity, roomID string) ([]services.HistoryEntry, error)
	ByUser(ctx context.Context, actor services.Identity, userID string) ([]services.HistoryEntry, error)
}

// HistoryResponse is the payload for the history endpoints.
type HistoryResponse struct {
	History []services.HistoryEntry `json:"history"`
}

// RoomHistory godoc
// @ID          roomHistory
// @Summary     Loan history of a room
// @Description Admin only. Entries are newest first; an open entry has no returned_at.
// @Tags        History
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Room ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.HistoryResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     404  {object}  handlers.ErrorResponse  "Room not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rooms/{id}/history [get]
func (h *Handlers) RoomHistory(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "room id must be a UUID")
		return
	}

	entries, err := h.histSvc.ByRoom(c.Request.Context(), identity(c), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "admin role required")
		case errors.Is(err, services.ErrRoomNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "room not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, HistoryResponse{History: entries})
}

// UserHistory godoc
// @ID          userHistory
// @Summary     Loan history of a user
// @Description Students may read their own history; admins may read anyone's.
// @Tags        History
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "User ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.HistoryResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Another user's history"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/{id}/history [get]
func (h *Handlers) UserHistory(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}

	entries, err := h.histSvc.ByUser(c.Request.Context(), identity(c), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "cannot read another user's history")
		case errors.Is(err, services.ErrUserNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, HistoryResponse{History: entries})
}
