package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/lfarias/go-keys-backend/internal/domain"
	"github.com/lfarias/go-keys-backend/internal/http/middleware"
	"github.com/lfarias/go-keys-backend/internal/services"
)

// ---- shared stubs; each field overrides one method, nil means zero-value success ----

type stubAuth struct {
	login    func(ctx context.Context, email, password string) (*services.LoginResult, error)
	register func(ctx context.Context, in services.RegisterInput) (*domain.User, error)
	profile  func(ctx context.Context, userID string) (*domain.User, error)
}

func (s stubAuth) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	if s.login != nil {
		return s.login(ctx, email, password)
	}
	return &services.LoginResult{}, nil
}

func (s stubAuth) Register(ctx context.Context, in services.RegisterInput) (*domain.User, error) {
	if s.register != nil {
		return s.register(ctx, in)
	}
	return &domain.User{}, nil
}

func (s stubAuth) Profile(ctx context.Context, userID string) (*domain.User, error) {
	if s.profile != nil {
		return s.profile(ctx, userID)
	}
	return &domain.User{}, nil
}

type stubRooms struct {
	listPage func(ctx context.Context, page, pageSize int) (*services.RoomPage, error)
	get      func(ctx context.Context, id string) (*services.RoomView, error)
	create   func(ctx context.Context, in services.RoomInput) (*services.RoomView, error)
	update   func(ctx context.Context, id string, in services.RoomInput) (*services.RoomView, error)
}

func (s stubRooms) ListPage(ctx context.Context, page, pageSize int) (*services.RoomPage, error) {
	if s.listPage != nil {
		return s.listPage(ctx, page, pageSize)
	}
	return &services.RoomPage{Page: page, PageSize: pageSize}, nil
}

func (s stubRooms) Get(ctx context.Context, id string) (*services.RoomView, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &services.RoomView{}, nil
}

func (s stubRooms) Create(ctx context.Context, in services.RoomInput) (*services.RoomView, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	return &services.RoomView{}, nil
}

func (s stubRooms) Update(ctx context.Context, id string, in services.RoomInput) (*services.RoomView, error) {
	if s.update != nil {
		return s.update(ctx, id, in)
	}
	return &services.RoomView{}, nil
}

// actionFn is the shared shape of the room-action stubs.
type actionFn func(ctx context.Context, actor services.Identity, roomID string) (*services.ActionResult, error)

// resolveFn is the shared shape of the decision stubs.
type resolveFn func(ctx context.Context, actor services.Identity, requestID string, approved bool) (*services.ActionResult, error)

type stubActions struct {
	reserve  actionFn
	trade    actionFn
	ret      actionFn
	release  actionFn
	assign   func(ctx context.Context, actor services.Identity, roomID, targetUserID string) (*services.ActionResult, error)
	suspend  func(ctx context.Context, actor services.Identity, roomID, reason string) (*services.ActionResult, error)
	decision resolveFn
}

func (s stubActions) call(fn actionFn, ctx context.Context, actor services.Identity, roomID string) (*services.ActionResult, error) {
	if fn != nil {
		return fn(ctx, actor, roomID)
	}
	return &services.ActionResult{Status: services.StatusPending}, nil
}

func (s stubActions) Reserve(ctx context.Context, actor services.Identity, roomID string) (*services.ActionResult, error) {
	return s.call(s.reserve, ctx, actor, roomID)
}

func (s stubActions) Trade(ctx context.Context, actor services.Identity, roomID string) (*services.ActionResult, error) {
	return s.call(s.trade, ctx, actor, roomID)
}

func (s stubActions) Return(ctx context.Context, actor services.Identity, roomID string) (*services.ActionResult, error) {
	return s.call(s.ret, ctx, actor, roomID)
}

func (s stubActions) Release(ctx context.Context, actor services.Identity, roomID string) (*services.ActionResult, error) {
	return s.call(s.release, ctx, actor, roomID)
}

func (s stubActions) Assign(ctx context.Context, actor services.Identity, roomID, targetUserID string) (*services.ActionResult, error) {
	if s.assign != nil {
		return s.assign(ctx, actor, roomID, targetUserID)
	}
	return &services.ActionResult{Status: services.StatusPending}, nil
}

func (s stubActions) Suspend(ctx context.Context, actor services.Identity, roomID, reason string) (*services.ActionResult, error) {
	if s.suspend != nil {
		return s.suspend(ctx, actor, roomID, reason)
	}
	return &services.ActionResult{Status: services.StatusApplied}, nil
}

func (s stubActions) resolve(ctx context.Context, actor services.Identity, requestID string, approved bool) (*services.ActionResult, error) {
	if s.decision != nil {
		return s.decision(ctx, actor, requestID, approved)
	}
	return &services.ActionResult{Status: services.StatusApplied}, nil
}

func (s stubActions) ResolveReservation(ctx context.Context, actor services.Identity, requestID string, approved bool) (*services.ActionResult, error) {
	return s.resolve(ctx, actor, requestID, approved)
}

func (s stubActions) ResolveTrade(ctx context.Context, actor services.Identity, requestID string, accepted bool) (*services.ActionResult, error) {
	return s.resolve(ctx, actor, requestID, accepted)
}

func (s stubActions) ResolveDevolution(ctx context.Context, actor services.Identity, requestID string, confirmed bool) (*services.ActionResult, error) {
	return s.resolve(ctx, actor, requestID, confirmed)
}

func (s stubActions) ResolveKeyRequest(ctx context.Context, actor services.Identity, requestID string, confirmed bool) (*services.ActionResult, error) {
	return s.resolve(ctx, actor, requestID, confirmed)
}

type stubNotifs struct {
	list    func(ctx context.Context, actor services.Identity, unreadOnly bool) ([]domain.Notification, error)
	mark    func(ctx context.Context, actor services.Identity, id string) error
	markAll func(ctx context.Context, actor services.Identity) (int64, error)
}

func (s stubNotifs) List(ctx context.Context, actor services.Identity, unreadOnly bool) ([]domain.Notification, error) {
	if s.list != nil {
		return s.list(ctx, actor, unreadOnly)
	}
	return nil, nil
}

func (s stubNotifs) MarkRead(ctx context.Context, actor services.Identity, id string) error {
	if s.mark != nil {
		return s.mark(ctx, actor, id)
	}
	return nil
}

func (s stubNotifs) MarkAllRead(ctx context.Context, actor services.Identity) (int64, error) {
	if s.markAll != nil {
		return s.markAll(ctx, actor)
	}
	return 0, nil
}

type stubHist struct {
	byRoom func(ctx context.Context, actor services.Identity, roomID string) ([]services.HistoryEntry, error)
	byUser func(ctx context.Context, actor services.Identity, userID string) ([]services.HistoryEntry, error)
}

func (s stubHist) ByRoom(ctx context.Context, actor services.Identity, roomID string) ([]services.HistoryEntry, error) {
	if s.byRoom != nil {
		return s.byRoom(ctx, actor, roomID)
	}
	return nil, nil
}

func (s stubHist) ByUser(ctx context.Context, actor services.Identity, userID string) ([]services.HistoryEntry, error) {
	if s.byUser != nil {
		return s.byUser(ctx, actor, userID)
	}
	return nil, nil
}

// ---- helpers ----

// asUser simulates the auth middleware by seeding identity values directly.
func asUser(id, name, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, id)
		c.Set(middleware.CtxUserName, name)
		c.Set(middleware.CtxUserRole, role)
		c.Next()
	}
}
