// Handler registry and shared helpers.
//
// Handlers depend on narrow service interfaces declared next to the handler
// files that use them, so tests can stub one service without standing up the
// rest of the application.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lfarias/go-keys-backend/internal/events"
	"github.com/lfarias/go-keys-backend/internal/http/middleware"
	"github.com/lfarias/go-keys-backend/internal/services"
	"github.com/lfarias/go-keys-backend/internal/utils"
)

// Handlers bundles the HTTP endpoints with their service dependencies.
type Handlers struct {
	authSvc   AuthAPI
	roomSvc   RoomAPI
	actionSvc ActionAPI
	notifSvc  NotificationAPI
	histSvc   HistoryAPI
	hub       *events.Hub
}

// New constructs the handler set. The hub may be nil; the events endpoint
// then reports service unavailable.
func New(auth AuthAPI, rooms RoomAPI, actions ActionAPI, notifs NotificationAPI, hist HistoryAPI, hub *events.Hub) *Handlers {
	return &Handlers{
		authSvc:   auth,
		roomSvc:   rooms,
		actionSvc: actions,
		notifSvc:  notifs,
		histSvc:   hist,
		hub:       hub,
	}
}

// identity rebuilds the caller's identity from the context values the auth
// middleware stored after validating the token.
func identity(c *gin.Context) services.Identity {
	return services.Identity{
		ID:   c.GetString(middleware.CtxUserID),
		Name: c.GetString(middleware.CtxUserName),
		Role: c.GetString(middleware.CtxUserRole),
	}
}

// Pagination is the standard pagination block in list responses.
type Pagination struct {
	Page       int   `json:"page" example:"1"`
	PageSize   int   `json:"page_size" example:"20"`
	Total      int64 `json:"total" example:"135"`
	TotalPages int   `json:"total_pages" example:"7"`
	HasNext    bool  `json:"has_next" example:"true"`
}

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// clampPagination reads ?page and ?page_size and clamps them to sane bounds.
func clampPagination(c *gin.Context) (page, pageSize int) {
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
