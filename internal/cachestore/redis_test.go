package cachestore

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/goliatone/go-bus-catalog/cache"
)

func TestNewRedisStore_RejectsInvalidConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.Addr = ""

	_, err := NewRedisStore(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected validation error for empty addr")
	}
}

func TestNewRedisStore_UnreachableEngine(t *testing.T) {
	// Port 1 is never a Redis server; construction must fail fast on the
	// ping rather than hand back a store that errors on first use.
	cfg := cache.DefaultConfig()
	cfg.Addr = "127.0.0.1:1"

	_, err := NewRedisStore(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected connection error")
	}
}
