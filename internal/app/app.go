package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/bidgate-backend/internal/data/db"
	httpx "github.com/yungbote/bidgate-backend/internal/http"
	"github.com/yungbote/bidgate-backend/internal/observability"
	"github.com/yungbote/bidgate-backend/internal/platform/logger"
	"github.com/yungbote/bidgate-backend/internal/realtime/bus"
	"github.com/yungbote/bidgate-backend/internal/realtime/sse"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics
	Hub      *sse.Hub
	Server   *httpx.Server

	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	mode := os.Getenv("LOG_MODE")
	if mode == "" {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB connects and migrates the relational store.
func OpenDB(log *logger.Logger, cfg db.Config) (*gorm.DB, error) {
	gdb, err := db.Open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		return nil, fmt.Errorf("db automigrate: %w", err)
	}
	return gdb, nil
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	theDB, err := OpenDB(log, cfg.DB)
	if err != nil {
		return nil, err
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		closeDB(theDB)
		return nil, err
	}

	metrics := observability.NewMetrics()
	svcs, err := wireServices(theDB, log, cfg, clients, metrics)
	if err != nil {
		clients.Close(ctx)
		closeDB(theDB)
		return nil, err
	}

	hub := sse.NewHub(log)
	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Clients:      clients,
		Services:     svcs,
		Metrics:      metrics,
		Hub:          hub,
		Server:       wireServer(theDB, log, cfg, svcs, metrics, hub),
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is done. The event forwarder and catalog watcher
// stop with it.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := a.Clients.Bus.StartForwarder(ctx, a.notify); err != nil {
		return fmt.Errorf("start event forwarder: %w", err)
	}
	if a.Cfg.WatchCatalog {
		if err := a.Services.Catalog.Watch(ctx); err != nil {
			a.Log.Warn("catalog hot reload disabled", "error", err)
		}
	}
	a.Server.OnShutdown(a.Hub.Close)
	a.Log.Info("http server listening", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(ctx, a.Cfg.HTTPAddr)
}

// notify is the downstream hook for domain events: each event is logged and
// pushed to live SSE subscribers. Delivery to people happens elsewhere.
func (a *App) notify(ev bus.Event) {
	a.Hub.Broadcast(ev)
	a.Log.Info("domain event",
		"event_id", ev.ID,
		"topic", ev.Topic,
		"rfp_id", ev.RFPID,
		"actor_id", ev.ActorID,
		"at", ev.At,
	)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Clients.Close(ctx)
	closeDB(a.DB)
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}

func closeDB(gdb *gorm.DB) {
	if gdb == nil {
		return
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
