package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-bus-catalog/cache"
)

// keyNamespace prefixes every cache key this service produces so one engine
// can be shared across relations without collisions.
const keyNamespace = "bus_routes"

// Service coordinates the cache and the repository. Reads are read-through;
// writes mutate the repository first and then invalidate the keys the write
// made stale. The service owns no record state: the repository is the source
// of truth and the cache engine owns its entries.
type Service struct {
	repo  RouteRepository
	store cache.Store
	keys  cache.KeySerializer
	ttl   time.Duration
	log   *slog.Logger

	// listKeys tracks every list key handed to the cache so creates,
	// updates, and deletes can drop stale pages without scanning the
	// engine.
	listKeys *xsync.MapOf[string, struct{}]
}

// NewService wires a Service from its collaborators. A non-positive ttl
// falls back to cache.DefaultTTL.
func NewService(repo RouteRepository, store cache.Store, keys cache.KeySerializer, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Service{
		repo:     repo,
		store:    store,
		keys:     keys,
		ttl:      ttl,
		log:      log,
		listKeys: xsync.NewMapOf[string, struct{}](),
	}
}

// Get resolves a route by id or natural key, serving from cache when it can.
func (s *Service) Get(ctx context.Context, sel Selector) (*Route, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	key := s.selectorKey(sel)

	if data, ok := s.cacheGet(ctx, key); ok {
		var route Route
		if err := msgpack.Unmarshal(data, &route); err != nil {
			// Corrupt entry: treat as a miss, drop it.
			s.log.Warn("cache decode failed", "key", key, "error", err)
			s.cacheDelete(ctx, key)
		} else {
			s.log.Debug("route served", "source", "cache", "key", key)
			return &route, nil
		}
	}

	route, err := s.fetch(ctx, sel)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, ErrNotFound
	}

	s.cachePut(ctx, key, route)
	s.log.Debug("route served", "source", "store", "key", key)
	return route, nil
}

// List returns one page of routes, read-through like Get. Pages are cached
// per (limit, offset) pair and every cached page is invalidated on any
// mutation, since a write can reshuffle pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Route, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	key := s.keys.SerializeKey(keyNamespace+".list", limit, offset)
	s.listKeys.Store(key, struct{}{})

	if data, ok := s.cacheGet(ctx, key); ok {
		var routes []Route
		if err := msgpack.Unmarshal(data, &routes); err != nil {
			s.log.Warn("cache decode failed", "key", key, "error", err)
			s.cacheDelete(ctx, key)
		} else {
			return routes, nil
		}
	}

	routes, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	s.cachePut(ctx, key, routes)
	return routes, nil
}

// Create inserts a new route and drops cached pages, which the insert may
// have changed. Point lookups for the new record populate on first read.
func (s *Service) Create(ctx context.Context, fields Fields) (*Route, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidRequest)
	}
	if err := fields.ValidateForCreate(); err != nil {
		return nil, err
	}

	route, err := s.repo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return route, nil
}

// Update applies a partial mutation and invalidates every key that could
// still serve the pre-update record: the id key, the natural key before and
// after the change, and all cached pages.
func (s *Service) Update(ctx context.Context, id int64, fields Fields) (*Route, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidRequest)
	}

	prior, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load route %d: %w", id, err)
	}
	if prior == nil {
		return nil, ErrNotFound
	}

	route, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, ErrNotFound
	}

	s.cacheInvalidate(ctx, s.idKey(id))
	s.cacheInvalidate(ctx, s.routeNoKey(prior.RouteNo))
	if route.RouteNo != prior.RouteNo {
		s.cacheInvalidate(ctx, s.routeNoKey(route.RouteNo))
	}
	s.invalidateLists(ctx)
	return route, nil
}

// Delete removes a route and invalidates its keys. The record is loaded
// first so the natural-key entry can be dropped too; the window between the
// load and the delete is covered by the same last-write-wins bound as every
// other read/write race here.
func (s *Service) Delete(ctx context.Context, id int64) error {
	prior, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load route %d: %w", id, err)
	}
	if prior == nil {
		return ErrNotFound
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	s.cacheInvalidate(ctx, s.idKey(id))
	s.cacheInvalidate(ctx, s.routeNoKey(prior.RouteNo))
	s.invalidateLists(ctx)
	return nil
}

func (s *Service) fetch(ctx context.Context, sel Selector) (*Route, error) {
	if sel.ID != nil {
		route, err := s.repo.GetByID(ctx, *sel.ID)
		if err != nil {
			return nil, fmt.Errorf("get route by id %d: %w", *sel.ID, err)
		}
		return route, nil
	}
	route, err := s.repo.GetByRouteNo(ctx, *sel.RouteNo)
	if err != nil {
		return nil, fmt.Errorf("get route by route_no %q: %w", *sel.RouteNo, err)
	}
	return route, nil
}

func (s *Service) selectorKey(sel Selector) string {
	if sel.ID != nil {
		return s.idKey(*sel.ID)
	}
	return s.routeNoKey(*sel.RouteNo)
}

func (s *Service) idKey(id int64) string {
	return s.keys.SerializeKey(keyNamespace+".get_by_id", id)
}

func (s *Service) routeNoKey(routeNo string) string {
	return s.keys.SerializeKey(keyNamespace+".get_by_route_no", routeNo)
}

// cacheGet downgrades every store failure to a miss. This is the single
// place the read path decides a cache outage is survivable.
func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	return data, ok
}

func (s *Service) cachePut(ctx context.Context, key string, value any) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		s.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.store.Put(ctx, key, data, s.ttl); err != nil {
		s.log.Warn("cache put failed", "key", key, "error", err)
	}
}

func (s *Service) cacheDelete(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("cache delete failed", "key", key, "error", err)
	}
}

func (s *Service) cacheInvalidate(ctx context.Context, key string) {
	if err := s.store.Invalidate(ctx, key); err != nil {
		s.log.Warn("cache invalidate failed", "key", key, "error", err)
	}
}

func (s *Service) invalidateLists(ctx context.Context) {
	s.listKeys.Range(func(key string, _ struct{}) bool {
		s.cacheInvalidate(ctx, key)
		s.listKeys.Delete(key)
		return true
	})
}
