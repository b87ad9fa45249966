// Room HTTP handlers.
//
//   - GET  /rooms       (paginated list, every authenticated user)
//   - GET  /rooms/{id}
//   - POST /rooms       (admin)
//   - PUT  /rooms/{id}  (admin)
//
// Each room in a response carries the actions legal from its current state
// so clients never re-encode the transition table.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lfarias/go-keys-backend/internal/services"
)

// RoomAPI is the slice of RoomService the handlers need.
type RoomAPI interface {
	ListPage(ctx context.Context, page, pageSize int) (*services.RoomPage, error)
	Get(ctx context.Context, id string) (*services.RoomView, error)
	Create(ctx context.Context, in services.RoomInput) (*services.RoomView, error)
	Update(ctx context.Context, id string, in services.RoomInput) (*services.RoomView, error)
}

// RoomRequest is the JSON payload for creating or updating a room.
type RoomRequest struct {
	Name        string `json:"name" binding:"required,max=120" example:"Lab 204"`
	Description string `json:"description" binding:"omitempty,max=2000" example:"Electronics lab, second floor"`
	Equipment   string `json:"equipment" binding:"omitempty,max=2000" example:"12 oscilloscopes"`
	Capacity    int    `json:"capacity" binding:"omitempty,min=0,max=10000" example:"30"`
}

// ListRoomsResponse is the paginated payload for GET /rooms.
type ListRoomsResponse struct {
	Rooms      []services.RoomView `json:"rooms"`
	Pagination Pagination          `json:"pagination"`
}

func roomInput(req RoomRequest) services.RoomInput {
	return services.RoomInput{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Equipment:   strings.TrimSpace(req.Equipment),
		Capacity:    req.Capacity,
	}
}

// ListRooms godoc
// @ID          listRooms
// @Summary     List rooms (paginated)
// @Tags        Rooms
// @Produce     json
// @Security    BearerAuth
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListRoomsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rooms [get]
func (h *Handlers) ListRooms(c *gin.Context) {
	page, pageSize := clampPagination(c)

	res, err := h.roomSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	totalPages := int((res.Total + int64(res.PageSize) - 1) / int64(res.PageSize))
	ok(c, http.StatusOK, ListRoomsResponse{
		Rooms: res.Items,
		Pagination: Pagination{
			Page:       res.Page,
			PageSize:   res.PageSize,
			Total:      res.Total,
			TotalPages: totalPages,
			HasNext:    res.Page < totalPages,
		},
	})
}

// GetRoom godoc
// @ID          getRoom
// @Summary     Fetch one room
// @Tags        Rooms
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Room ID (UUID)"  format(uuid)
// @Success     200  {object}  services.RoomView
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid room id"
// @Failure     404  {object}  handlers.ErrorResponse  "Room not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rooms/{id} [get]
func (h *Handlers) GetRoom(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "room id must be a UUID")
		return
	}

	room, err := h.roomSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "room not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, room)
}

// CreateRoom godoc
// @ID          createRoom
// @Summary     Create a room
// @Description Admin only. New rooms start Available with the key held by administration.
// @Tags        Rooms
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.RoomRequest  true  "Room attributes"
// @Success     201  {object}  services.RoomView
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     409  {object}  handlers.ErrorResponse  "Room name already in use"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rooms [post]
func (h *Handlers) CreateRoom(c *gin.Context) {
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "room name required (1-120 chars)")
		return
	}

	room, err := h.roomSvc.Create(c.Request.Context(), roomInput(req))
	if err != nil {
		if errors.Is(err, services.ErrRoomNameTaken) {
			fail(c, http.StatusConflict, ErrCodeConflict, "room name already in use")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, room)
}

// UpdateRoom godoc
// @ID          updateRoom
// @Summary     Update a room's descriptive fields
// @Description Admin only. State and holder are changed through actions, not here.
// @Tags        Rooms
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                true  "Room ID (UUID)"  format(uuid)
// @Param       body  body  handlers.RoomRequest  true  "Room attributes"
// @Success     200  {object}  services.RoomView
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     404  {object}  handlers.ErrorResponse  "Room not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Room name already in use"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rooms/{id} [put]
func (h *Handlers) UpdateRoom(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "room id must be a UUID")
		return
	}

	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "room name required (1-120 chars)")
		return
	}

	room, err := h.roomSvc.Update(c.Request.Context(), id, roomInput(req))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoomNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "room not found")
		case errors.Is(err, services.ErrRoomNameTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, "room name already in use")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, room)
}
