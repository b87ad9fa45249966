// Campus keys backend entrypoint: loads configuration, opens the database,
// wires tracing, the event hub, and the pending-request sweeper, then serves
// the HTTP API until SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lfarias/go-keys-backend/internal/config"
	"github.com/lfarias/go-keys-backend/internal/events"
	httpapi "github.com/lfarias/go-keys-backend/internal/http"
	"github.com/lfarias/go-keys-backend/internal/jobs"
	"github.com/lfarias/go-keys-backend/internal/observability"
	"github.com/lfarias/go-keys-backend/internal/repo"
	"github.com/lfarias/go-keys-backend/internal/security"
	"github.com/lfarias/go-keys-backend/internal/services"
	"github.com/lfarias/go-keys-backend/internal/sysutil"
)

// version is stamped by the build (-ldflags "-X main.version=...").
var version = "dev"

// @title        Campus Keys API
// @version      1.0
// @description  Key and room reservation backend: rooms, reservation workflow, notifications, and loan history.
// @BasePath     /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	hub := events.NewHub(cfg.EventBuffer)
	defer hub.Close()

	tokens := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Pending-request expiry (disabled when PENDING_TTL is 0).
	actionSvc := services.NewActionService(db, hub, services.NewMessageCatalog(cfg.DefaultLocale))
	sweeper := jobs.NewSweeper(actionSvc, cfg.Sweeper.Schedule, cfg.Sweeper.PendingTTL)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("sweeper start failed")
	}
	defer sweeper.Stop()

	r := gin.New()
	httpapi.RegisterRoutes(r, db, hub, tokens, cfg)

	// WriteTimeout stays 0: the SSE endpoint holds its response open for the
	// lifetime of the subscription and a server-wide write deadline would cut
	// every stream. Read-side timeouts still bound slow clients.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
