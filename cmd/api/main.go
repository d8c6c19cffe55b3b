package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"mysteries-backend/internal/config"
	"mysteries-backend/internal/handlers"
	"mysteries-backend/internal/logging"
	"mysteries-backend/internal/middleware"
	"mysteries-backend/internal/routes"
	"mysteries-backend/internal/services"
)

// stateStore is what the server needs from a backend: transitions plus the
// per-account rate limiting counters.
type stateStore interface {
	services.Store
	middleware.RateLimiter
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Env)

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	jwtService := services.NewJWTService(cfg)

	hub := handlers.NewWebSocketHub()
	defer hub.Close()

	state := services.NewGameState(store, cfg.AuthorityAccount, hub)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}
	router.Use(middleware.CORS())

	routes.Setup(router, cfg, state, jwtService, store, hub)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreBackend, "authority", cfg.AuthorityAccount)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
}

func openStore(cfg *config.Config) (stateStore, error) {
	if cfg.StoreBackend == config.StoreMemory {
		slog.Warn("using in-memory store, state is lost on restart")
		return services.NewMemoryStore(), nil
	}
	store, err := services.NewRedisStore(cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}
