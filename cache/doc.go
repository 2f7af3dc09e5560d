// Package cache defines the caching surface the catalog service depends on.
//
// It contains three pieces:
//
//   - Store, the contract every cache engine adapter satisfies. Values are
//     opaque byte slices; encoding is the caller's concern. Store methods
//     return errors so the orchestration layer can decide (and log) how to
//     degrade; adapters never panic and never retry.
//
//   - KeySerializer, which turns a method name plus lookup arguments into a
//     deterministic key string. Two logically equal lookups must always
//     produce the same key or cache hits never happen.
//
//   - Config, the engine-independent configuration (address, credentials,
//     memory ceiling, default TTL) validated before any adapter is built.
//
// Concrete adapters live in internal/cachestore. The Redis adapter is the
// production engine; the in-memory adapter backs tests and serves as a
// fallback when Redis is unreachable at startup.
//
// Every Store operation is best-effort from the service's point of view: a
// failing cache must degrade to "always miss" and never break a read or a
// write. That downgrade happens in the catalog package, not here, so the
// contract is visible in code rather than hidden in swallowed errors.
package cache
