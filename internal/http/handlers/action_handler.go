// Reservation workflow HTTP handlers.
//
// Two endpoint families drive the key workflow:
//
//   - POST /rooms/{id}/{reserve,trade,return,assign,suspend,release}
//     initiates an action on a room. Student actions and the admin assign
//     produce a pending request for the other party; suspend and release
//     apply immediately.
//
//   - POST /requests/{id}/{reservation,trade,devolution,key}
//     decides a pending request addressed to the caller. The body carries a
//     single boolean; the path segment pins the expected request type so a
//     client cannot approve a trade through the reservation endpoint.
//
// All endpoints translate the engine's sentinel errors through one shared
// mapping, so "room not found" or "someone else decided first" look the
// same no matter which action surfaced them.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lfarias/go-keys-backend/internal/services"
)

// ActionAPI is the slice of ActionService the handlers need.
type ActionAPI interface {
	Reserve(ctx context.Context, actor services.Identity, roomID string) (*services.ActionResult, error)
	Trade(ctx context.Context, actor services.Identity, roomID string) (*services.ActionResult, error)
	Return(ctx context.Context, actor services.Identity, roomID string) (*services.ActionResult, error)
	Assign(ctx context.Context, actor services.Identity, roomID, targetUserID string) (*services.ActionResult, error)
	Suspend(ctx context.Context, actor services.Identity, roomID, reason string) (*services.ActionResult, error)
	Release(ctx context.Context, actor services.Identity, roomID string) (*services.ActionResult, error)

	ResolveReservation(ctx context.Context, actor services.Identity, requestID string, approved bool) (*services.ActionResult, error)
	ResolveTrade(ctx context.Context, actor services.Identity, requestID string, accepted bool) (*services.ActionResult, error)
	ResolveDevolution(ctx context.Context, actor services.Identity, requestID string, confirmed bool) (*services.ActionResult, error)
	ResolveKeyRequest(ctx context.Context, actor services.Identity, requestID string, confirmed bool) (*services.ActionResult, error)
}

// AssignRequest is the JSON payload for POST /rooms/{id}/assign.
type AssignRequest struct {
	// UserID is the current key holder the reclaim request is sent to.
	UserID string `json:"user_id" binding:"required,uuid" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// SuspendRequest is the JSON payload for POST /rooms/{id}/suspend.
type SuspendRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500" example:"water damage"`
}

// DecisionRequest is the JSON payload for deciding a pending request.
// Approved=true approves/accepts/confirms; false rejects. The pointer makes
// an omitted field a binding error instead of a silent reject.
type DecisionRequest struct {
	Approved *bool `json:"approved" binding:"required" example:"true"`
}

// failAction maps the engine's sentinel errors onto HTTP results.
func failAction(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRoomNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "room not found")
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "request not found")
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "action not allowed for this user")
	case errors.Is(err, services.ErrRuleViolation):
		fail(c, http.StatusUnprocessableEntity, ErrCodeRuleViolation, err.Error())
	case errors.Is(err, services.ErrAlreadyResolved):
		fail(c, http.StatusConflict, ErrCodeAlreadyResolved, "request was already decided")
	case errors.Is(err, services.ErrWrongRequestType):
		fail(c, http.StatusConflict, ErrCodeWrongRequestType, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// roomIDParam validates the :id path segment. Returns "" after writing the
// error response when the id is not a UUID.
func roomIDParam(c *gin.Context) string {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "room id must be a UUID")
		return ""
	}
	return id
}

func requestIDParam(c *gin.Context) string {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request id must be a UUID")
		return ""
	}
	return id
}

//
// Room actions
//

// ReserveRoom godoc
// @ID          reserveRoom
// @Summary     Request a room's key
// @Description Student action on an Available room. Fans a reservation request out to every admin; the room stays Available until one admin approves.
// @Tags        Actions
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Room ID (UUID)"  format(uuid)
// @Success     202  {object}  services.ActionResult
// @Failure     403  {object}  handlers.ErrorResponse  "Role may not reserve"
// @Failure     404  {object}  handlers.ErrorResponse  "Room not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Room not Available"
// @Router      /rooms/{id}/reserve [post]
func (h *Handlers) ReserveRoom(c *gin.Context) {
	id := roomIDParam(c)
	if id == "" {
		return
	}
	res, err := h.actionSvc.Reserve(c.Request.Context(), identity(c), id)
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusAccepted, res)
}

// TradeRoom godoc
// @ID          tradeRoom
// @Summary     Propose a key trade
// @Description Student action on an InUse room. Sends a trade proposal to the current holder.
// @Tags        Actions
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Room ID (UUID)"  format(uuid)
// @Success     202  {object}  services.ActionResult
// @Failure     403  {object}  handlers.ErrorResponse  "Role may not trade"
// @Failure     404  {object}  handlers.ErrorResponse  "Room not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Room not InUse, or caller already holds it"
// @Router      /rooms/{id}/trade [post]
func (h *Handlers) TradeRoom(c *gin.Context) {
	id := roomIDParam(c)
	if id == "" {
		return
	}
	res, err := h.actionSvc.Trade(c.Request.Context(), identity(c), id)
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusAccepted, res)
}

// ReturnRoom godoc
// @ID          returnRoom
// @Summary     Offer to return a held key
// @Description Holder action on an InUse room. Fans a devolution request out to every admin.
// @Tags        Actions
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Room ID (UUID)"  format(uuid)
// @Success     202  {object}  services.ActionResult
// @Failure     403  {object}  handlers.ErrorResponse  "Caller does not hold the key"
// @Failure     404  {object}  handlers.ErrorResponse  "Room not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Room not InUse"
// @Router      /rooms/{id}/return [post]
func (h *Handlers) ReturnRoom(c *gin.Context) {
	id := roomIDParam(c)
	if id == "" {
		return
	}
	res, err := h.actionSvc.Return(c.Request.Context(), identity(c), id)
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusAccepted, res)
}

// AssignRoom godoc
// @ID          assignRoom
// @Summary     Reclaim a key from its holder
// @Description Admin action on an InUse room. Sends a key request to the named holder; the key returns to administration when the holder confirms.
// @Tags        Actions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                 true  "Room ID (UUID)"  format(uuid)
// @Param       body  body  handlers.AssignRequest true  "Current holder"
// @Success     202  {object}  services.ActionResult
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     404  {object}  handlers.ErrorResponse  "Room not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Room not InUse or user is not the holder"
// @Router      /rooms/{id}/assign [post]
func (h *Handlers) AssignRoom(c *gin.Context) {
	id := roomIDParam(c)
	if id == "" {
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id (UUID) required")
		return
	}
	res, err := h.actionSvc.Assign(c.Request.Context(), identity(c), id, req.UserID)
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusAccepted, res)
}

// SuspendRoom godoc
// @ID          suspendRoom
// @Summary     Take a room out of service
// @Description Admin action from any state. Applies immediately; an open loan record is closed and the key returns to administration.
// @Tags        Actions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                  true   "Room ID (UUID)"  format(uuid)
// @Param       body  body  handlers.SuspendRequest false  "Optional reason"
// @Success     200  {object}  services.ActionResult
// @Failure     403  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     404  {object}  handlers.ErrorResponse  "Room not found"
// @Router      /rooms/{id}/suspend [post]
func (h *Handlers) SuspendRoom(c *gin.Context) {
	id := roomIDParam(c)
	if id == "" {
		return
	}
	var req SuspendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}
	res, err := h.actionSvc.Suspend(c.Request.Context(), identity(c), id, req.Reason)
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// ReleaseRoom godoc
// @ID          releaseRoom
// @Summary     Put a suspended room back in service
// @Description Admin action on an Unavailable room. Applies immediately.
// @Tags        Actions
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Room ID (UUID)"  format(uuid)
// @Success     200  {object}  services.ActionResult
// @Failure     403  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     404  {object}  handlers.ErrorResponse  "Room not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Room not Unavailable"
// @Router      /rooms/{id}/release [post]
func (h *Handlers) ReleaseRoom(c *gin.Context) {
	id := roomIDParam(c)
	if id == "" {
		return
	}
	res, err := h.actionSvc.Release(c.Request.Context(), identity(c), id)
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

//
// Request decisions
//

// decide factors the shared shape of the four decision endpoints.
func (h *Handlers) decide(c *gin.Context, resolve func(ctx context.Context, actor services.Identity, requestID string, approved bool) (*services.ActionResult, error)) {
	id := requestIDParam(c)
	if id == "" {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "approved (boolean) required")
		return
	}
	res, err := resolve(c.Request.Context(), identity(c), id, *req.Approved)
	if err != nil {
		failAction(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// DecideReservation godoc
// @ID          decideReservation
// @Summary     Approve or reject a reservation request
// @Description Admin decision. Approval hands the key to the student and invalidates the sibling copies sent to other admins.
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                   true  "Request ID (UUID)"  format(uuid)
// @Param       body  body  handlers.DecisionRequest true  "Decision"
// @Success     200  {object}  services.ActionResult
// @Failure     403  {object}  handlers.ErrorResponse  "Request addressed to someone else"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already decided, or not a reservation request"
// @Failure     422  {object}  handlers.ErrorResponse  "Room no longer Available"
// @Router      /requests/{id}/reservation [post]
func (h *Handlers) DecideReservation(c *gin.Context) {
	h.decide(c, h.actionSvc.ResolveReservation)
}

// DecideTrade godoc
// @ID          decideTrade
// @Summary     Accept or reject a trade proposal
// @Description Holder decision. Acceptance moves the key and the loan record to the proposer.
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                   true  "Request ID (UUID)"  format(uuid)
// @Param       body  body  handlers.DecisionRequest true  "Decision"
// @Success     200  {object}  services.ActionResult
// @Failure     403  {object}  handlers.ErrorResponse  "Request addressed to someone else"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already decided, or not a trade request"
// @Failure     422  {object}  handlers.ErrorResponse  "Caller no longer holds the key"
// @Router      /requests/{id}/trade [post]
func (h *Handlers) DecideTrade(c *gin.Context) {
	h.decide(c, h.actionSvc.ResolveTrade)
}

// DecideDevolution godoc
// @ID          decideDevolution
// @Summary     Confirm or reject a key return
// @Description Admin decision. Confirmation closes the loan and makes the room Available again.
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                   true  "Request ID (UUID)"  format(uuid)
// @Param       body  body  handlers.DecisionRequest true  "Decision"
// @Success     200  {object}  services.ActionResult
// @Failure     403  {object}  handlers.ErrorResponse  "Request addressed to someone else"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already decided, or not a devolution request"
// @Router      /requests/{id}/devolution [post]
func (h *Handlers) DecideDevolution(c *gin.Context) {
	h.decide(c, h.actionSvc.ResolveDevolution)
}

// DecideKeyRequest godoc
// @ID          decideKeyRequest
// @Summary     Confirm or refuse handing the key back
// @Description Holder decision on an admin's reclaim request. Confirmation returns the key to administration.
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                   true  "Request ID (UUID)"  format(uuid)
// @Param       body  body  handlers.DecisionRequest true  "Decision"
// @Success     200  {object}  services.ActionResult
// @Failure     403  {object}  handlers.ErrorResponse  "Request addressed to someone else"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already decided, or not a key request"
// @Router      /requests/{id}/key [post]
func (h *Handlers) DecideKeyRequest(c *gin.Context) {
	h.decide(c, h.actionSvc.ResolveKeyRequest)
}
