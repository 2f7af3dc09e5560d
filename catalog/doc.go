// Package catalog holds the bus-route domain model and the read-through,
// write-invalidate orchestration between the cache and the relational store.
//
// Reads check the cache first, fall back to the repository on a miss, and
// populate the cache with the fetched record. Writes always hit the
// repository first (it is the source of truth) and then invalidate the
// affected cache keys. If an invalidation fails, at most one stale read can
// be served until the entry's TTL expires; that is the accepted consistency
// bound of the design.
//
// Cache failures never reach a caller of Service: every Store error is
// logged and downgraded to a miss or a no-op, so correctness depends only
// on the repository.
package catalog
