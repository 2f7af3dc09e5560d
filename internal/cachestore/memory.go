package cachestore

import (
	"context"
	"log/slog"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-bus-catalog/cache"
)

// Sturdyc sizes by entry count, not bytes; the ceiling in megabytes is
// mapped to a capacity assuming entries around 1 KiB, which is generous for
// an encoded route row.
const approxEntriesPerMB = 1024

const (
	numShards          = 64
	evictionPercentage = 10
)

// MemoryStore implements cache.Store on an in-process sturdyc client. It
// backs tests and acts as the fallback engine when Redis is unreachable at
// startup.
//
// Sturdyc applies its TTL client-wide, so per-entry TTL overrides passed to
// Put are not honored; every entry lives for the configured default. That
// is acceptable for both uses of this store.
type MemoryStore struct {
	client *sturdyc.Client[[]byte]
	log    *slog.Logger
}

var _ cache.Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store with capacity derived from the configured
// memory ceiling and LRU-style eviction performed by the client.
func NewMemoryStore(cfg cache.Config, log *slog.Logger) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	capacity := cfg.MaxMemoryMB * approxEntriesPerMB
	client := sturdyc.New[[]byte](capacity, numShards, cfg.TTL, evictionPercentage)

	return &MemoryStore{client: client, log: log}, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.client.Set(key, value)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

func (s *MemoryStore) Invalidate(ctx context.Context, key string) error {
	s.log.Info("cache invalidate", "key", key)
	return s.Delete(ctx, key)
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := s.client.Get(key)
	return ok, nil
}

func (s *MemoryStore) Size(ctx context.Context) (int64, error) {
	return int64(s.client.Size()), nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
