// Package app wires the service together: config in, running components
// out. Every dependency is constructed once here and passed explicitly;
// there are no package-level singletons anywhere in the repository.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/goliatone/go-bus-catalog/cache"
	"github.com/goliatone/go-bus-catalog/catalog"
	"github.com/goliatone/go-bus-catalog/config"
	"github.com/goliatone/go-bus-catalog/internal/cachestore"
	"github.com/goliatone/go-bus-catalog/internal/httpserver"
	"github.com/goliatone/go-bus-catalog/repository"
)

// App holds the constructed components for one service process.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	db     *bun.DB
	store  cache.Store
	server *httpserver.Server
}

// New builds every component from config. A missing or unreachable database
// is fatal. An unreachable cache engine is not: the service degrades to an
// in-process store so reads and writes keep working.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := newLogger(cfg.Log)

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	cacheCfg := cache.Config{
		Addr:        cfg.Cache.Addr(),
		Password:    cfg.Cache.Password,
		DB:          cfg.Cache.DB,
		MaxMemoryMB: cfg.Cache.MaxMemoryMB,
		TTL:         cfg.Cache.TTL(),
	}
	store := openCacheStore(ctx, cacheCfg, log)

	svc := catalog.NewService(
		repository.NewRoutes(db),
		store,
		cache.NewKeySerializer(),
		cacheCfg.TTL,
		log,
	)
	server := httpserver.New(cfg.Server.Port, svc, log)

	return &App{cfg: cfg, log: log, db: db, store: store, server: server}, nil
}

// Run serves HTTP until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if n, err := a.store.Size(ctx); err == nil {
		a.log.Debug("cache store ready", "live_keys", n)
	}
	return a.server.Run(ctx)
}

// Close releases the database and cache connections.
func (a *App) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("cache close failed", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn("database close failed", "error", err)
	}
}

// Logger exposes the process logger for the entrypoint.
func (a *App) Logger() *slog.Logger {
	return a.log
}

func openDatabase(ctx context.Context, cfg config.Database) (*bun.DB, error) {
	sqldb, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func openCacheStore(ctx context.Context, cfg cache.Config, log *slog.Logger) cache.Store {
	store, err := cachestore.NewRedisStore(ctx, cfg, log)
	if err == nil {
		return store
	}
	log.Warn("redis unavailable, falling back to in-process cache", "addr", cfg.Addr, "error", err)

	memory, memErr := cachestore.NewMemoryStore(cfg, log)
	if memErr != nil {
		// Config already validated at load; reaching this means the
		// ceiling/TTL are unusable, so run uncached rather than die.
		log.Error("in-process cache unavailable, running without cache", "error", memErr)
		return noopStore{}
	}
	return memory
}
