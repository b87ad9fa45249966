// Notification HTTP handlers.
//
//   - GET  /notifications            (caller's inbox, ?unread=true filters)
//   - POST /notifications/{id}/read
//   - POST /notifications/read-all
//
// Pending decision requests cannot be dismissed here; they must go through
// the /requests endpoints. MarkAllRead skips them for the same reason.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lfarias/go-keys-backend/internal/domain"
	"github.com/lfarias/go-keys-backend/internal/services"
	"github.com/lfarias/go-keys-backend/internal/sysutil"
)

// NotificationAPI is the slice of NotificationService the handlers need.
type NotificationAPI interface {
	List(ctx context.Context, actor services.Identity, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, actor services.Identity, id string) error
	MarkAllRead(ctx context.Context, actor services.Identity) (int64, error)
}

// ListNotificationsResponse is the payload for GET /notifications.
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

// MarkAllReadResponse reports how many notifications were settled.
type MarkAllReadResponse struct {
	Marked int64 `json:"marked" example:"4"`
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List the caller's notifications
// @Tags        Notifications
// @Produce     json
// @Security    BearerAuth
// @Param       unread  query  bool  false  "Only unread"  default(false)
// @Success     200  {object}  handlers.ListNotificationsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	unread := sysutil.IsTruthy(c.Query("unread"))

	ns, err := h.notifSvc.List(c.Request.Context(), identity(c), unread)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListNotificationsResponse{Notifications: ns})
}

// MarkNotificationRead godoc
// @ID          markNotificationRead
// @Summary     Mark one notification as read
// @Tags        Notifications
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Notification ID (UUID)"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Notification addressed to someone else"
// @Failure     404  {object}  handlers.ErrorResponse  "Notification not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Pending request, decide it instead"
// @Router      /notifications/{id}/read [post]
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "notification id must be a UUID")
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), identity(c), id); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "notification addressed to someone else")
		case errors.Is(err, services.ErrWrongRequestType):
			fail(c, http.StatusConflict, ErrCodeWrongRequestType, "pending request must be decided, not dismissed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// MarkAllNotificationsRead godoc
// @ID          markAllNotificationsRead
// @Summary     Mark every outcome notification as read
// @Description Pending decision requests are left untouched.
// @Tags        Notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.MarkAllReadResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /notifications/read-all [post]
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.notifSvc.MarkAllRead(c.Request.Context(), identity(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, MarkAllReadResponse{Marked: n})
}
