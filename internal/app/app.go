package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"rescue-console/internal/config"
	"rescue-console/internal/console"
	"rescue-console/internal/database"
	"rescue-console/internal/event"
	"rescue-console/internal/handler"
	"rescue-console/internal/imagecache"
	"rescue-console/internal/logger"
	"rescue-console/internal/metrics"
	"rescue-console/internal/middleware"
	"rescue-console/internal/router"
	"rescue-console/internal/storage"
	"rescue-console/internal/websocket"
)

type App struct {
	server       *http.Server
	console      *console.Console
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), true))

	return NewWithConfig(context.Background(), cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	local, err := a.openLocalStorage(ctx, cfg)
	if err != nil {
		a.cleanup()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	bus := event.NewBus()
	hubCtx, hubCancel := context.WithCancel(context.Background())
	a.cleanupFuncs = append(a.cleanupFuncs, hubCancel)
	hub := websocket.NewHub(bus)
	go hub.Run(hubCtx)

	c, err := console.New(console.Options{
		BackendURL:          cfg.BackendURL,
		Local:               local,
		Session:             storage.NewMemory(),
		Bus:                 bus,
		Metrics:             metrics.New(registry),
		RequestTimeout:      cfg.RequestTimeout,
		CheckInterval:       cfg.SessionCheckInterval,
		FreshnessFallback:   cfg.FreshnessFallback,
		FreshnessNamespaces: cfg.FreshnessNamespaces,
		OutboundRPS:         cfg.OutboundRPS,
		OutboundBurst:       cfg.OutboundBurst,
	})
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to initialize console: %w", err)
	}
	a.console = c
	a.cleanupFuncs = append(a.cleanupFuncs, c.Close)

	if c.Resume(ctx) {
		slog.Info("resumed stored session", "user_id", c.State.UserID(ctx), "role", c.State.Role(ctx))
	}

	avatars := imagecache.New(c.API.Employees, c.Session, cfg.AvatarSize)

	appRouter := router.New(cfg, middleware.NewSessionGuard(c.State), router.Handlers{
		Session: handler.NewSessionHandler(c.Auth, c.Views),
		Avatar:  handler.NewAvatarHandler(avatars),
		Proxy:   handler.NewProxyHandler(c.Backend, c.Transport, router.BackendPrefix),
		Events:  websocket.Handler(hub, cfg.CORSOrigins),
	}, registry)

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

func (a *App) openLocalStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		slog.Warn("memory storage selected; the session ends with the process")
		return storage.NewMemory(), nil

	case config.StorageRedis:
		store, err := storage.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "")
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = store.Close() })
		slog.Info("local storage ready", "backend", "redis", "addr", cfg.RedisAddr)
		return store, nil

	case config.StoragePostgres:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns), int32(cfg.DBMinConns))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

		if err := db.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		slog.Info("local storage ready", "backend", "postgres")
		return storage.NewPostgres(db.Pool, "console"), nil
	}

	store, err := storage.NewFile(cfg.StorageFile, cfg.StoragePassphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage file: %w", err)
	}
	slog.Info("local storage ready", "backend", "file", "path", store.Path(), "sealed", cfg.StoragePassphrase != "")
	return store, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("console gateway starting", "addr", a.server.Addr, "backend", a.console.Backend.String())
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// the session outlives the gateway; only the check loop stops
	err := a.server.Shutdown(ctx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
