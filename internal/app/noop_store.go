package app

import (
	"context"
	"time"
)

// noopStore is the last-resort cache: every read misses and every write is
// discarded. The service stays correct because the repository is always the
// source of truth.
type noopStore struct{}

func (noopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopStore) Put(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (noopStore) Delete(context.Context, string) error     { return nil }
func (noopStore) Invalidate(context.Context, string) error { return nil }
func (noopStore) Exists(context.Context, string) (bool, error) {
	return false, nil
}
func (noopStore) Size(context.Context) (int64, error) { return 0, nil }
func (noopStore) Clear(context.Context) error         { return nil }
func (noopStore) Close() error                        { return nil }
