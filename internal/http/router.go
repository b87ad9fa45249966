// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Role checks at the transport edge for admin-only management routes;
//     workflow role rules stay in the services
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/lfarias/go-keys-backend/docs"
	"github.com/lfarias/go-keys-backend/internal/config"
	"github.com/lfarias/go-keys-backend/internal/events"
	"github.com/lfarias/go-keys-backend/internal/http/handlers"
	"github.com/lfarias/go-keys-backend/internal/http/middleware"
	"github.com/lfarias/go-keys-backend/internal/security"
	"github.com/lfarias/go-keys-backend/internal/services"
	"github.com/lfarias/go-keys-backend/internal/sysutil"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Structured logging
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and security headers
//  9. Gzip (SSE excluded; compression would buffer the stream)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub *events.Hub, tokens *security.TokenManager, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(sysutil.FirstNonEmpty(cfg.OTEL.ServiceName, "go-keys-backend")))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured request logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (256 KiB; payloads here are small)
	r.Use(limitBody(256 << 10))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	middleware.RegisterSubscriberGauge(hub.Len)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// 9) Compress responses; the event stream must stay uncompressed
	eventsPath := strings.TrimSuffix(cfg.APIBasePath, "/") + "/events"
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{eventsPath})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (optional)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/hub/tokens
	authSvc := services.NewAuthService(db, tokens)
	roomSvc := services.NewRoomService(db, hub)
	actionSvc := services.NewActionService(db, hub, services.NewMessageCatalog(cfg.DefaultLocale))
	notifSvc := services.NewNotificationService(db)
	histSvc := services.NewHistoryService(db)
	h := handlers.New(authSvc, roomSvc, actionSvc, notifSvc, histSvc, hub)

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)

	// Public endpoints
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)

	// Everything else requires a valid token
	auth := api.Group("", middleware.Auth(tokens))
	{
		auth.GET("/me", h.Me)

		// Rooms
		auth.GET("/rooms", h.ListRooms)
		auth.GET("/rooms/:id", h.GetRoom)
		auth.GET("/rooms/:id/history", h.RoomHistory)

		// Workflow actions; per-action role rules live in the service
		auth.POST("/rooms/:id/reserve", h.ReserveRoom)
		auth.POST("/rooms/:id/trade", h.TradeRoom)
		auth.POST("/rooms/:id/return", h.ReturnRoom)
		auth.POST("/rooms/:id/assign", h.AssignRoom)
		auth.POST("/rooms/:id/suspend", h.SuspendRoom)
		auth.POST("/rooms/:id/release", h.ReleaseRoom)

		// Request decisions
		auth.POST("/requests/:id/reservation", h.DecideReservation)
		auth.POST("/requests/:id/trade", h.DecideTrade)
		auth.POST("/requests/:id/devolution", h.DecideDevolution)
		auth.POST("/requests/:id/key", h.DecideKeyRequest)

		// Notifications
		auth.GET("/notifications", h.ListNotifications)
		auth.POST("/notifications/:id/read", h.MarkNotificationRead)
		auth.POST("/notifications/read-all", h.MarkAllNotificationsRead)

		// Loan history
		auth.GET("/users/:id/history", h.UserHistory)

		// Live events
		auth.GET("/events", h.StreamEvents)

		// Room management is admin-only at the transport edge
		admin := auth.Group("", middleware.RequireRole("admin"))
		{
			admin.POST("/rooms", h.CreateRoom)
			admin.PUT("/rooms/:id", h.UpdateRoom)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
