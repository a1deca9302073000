package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tristanl-slalom/conflicto-sub001/config"
	"github.com/tristanl-slalom/conflicto-sub001/internal/cache"
	"github.com/tristanl-slalom/conflicto-sub001/internal/domain"
	"github.com/tristanl-slalom/conflicto-sub001/internal/postgres"
	"github.com/tristanl-slalom/conflicto-sub001/internal/service"
	httpx "github.com/tristanl-slalom/conflicto-sub001/internal/transport/http"
	"github.com/tristanl-slalom/conflicto-sub001/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting caja-sync",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- redis (опционально) ---
	statuses := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.CacheTTL())
	if statuses != nil {
		slog.Info("status cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.CacheTTL())
		defer statuses.Close()
	}

	// --- repos ---
	sessionRepo := postgres.NewSessionRepository(db.Pool)
	activityRepo := postgres.NewActivityRepository(db.Pool)
	participantRepo := postgres.NewParticipantRepository(db.Pool)
	responseRepo := postgres.NewResponseRepository(db.Pool)

	// --- services ---
	registry := service.NewRegistry(participantRepo)
	presence := service.NewPresence(participantRepo)
	presence.SetPolicy(domain.PresencePolicy{
		OnlineWindow: cfg.OnlineWindow(),
		IdleWindow:   cfg.IdleWindow(),
	})
	snapshots := service.NewSnapshot(sessionRepo, activityRepo, presence)
	syncer := service.NewSyncer(sessionRepo, participantRepo, registry, presence, snapshots)
	poller := service.NewPoller(sessionRepo, activityRepo, responseRepo, participantRepo, presence, statuses)

	// --- HTTP ---
	handler := httpx.NewHandler(syncer, poller)
	router := httpx.NewRouter(handler, presence)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
