package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// EvictionPolicy is the engine-level eviction rule requested at
// construction. The service pins this to least-recently-used over all keys;
// the engine, not this package, performs the eviction.
const EvictionPolicy = "allkeys-lru"

// Config holds engine-independent cache settings.
type Config struct {
	// Addr is the engine address, host:port.
	Addr string

	// Password authenticates against the engine. Empty means no auth.
	Password string

	// DB selects the engine database index where the engine supports one.
	DB int

	// MaxMemoryMB is the engine memory ceiling in megabytes. When the
	// ceiling is reached the engine evicts per EvictionPolicy.
	MaxMemoryMB int

	// TTL is the default entry lifetime applied when a caller does not
	// supply one.
	TTL time.Duration
}

// DefaultConfig returns the settings used when nothing is configured:
// a local engine, a 10 MB ceiling, and one-hour entries.
func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:6379",
		MaxMemoryMB: 10,
		TTL:         DefaultTTL,
	}
}

// Validate checks the configuration before an adapter is constructed.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
		// Required is needed alongside Min: ozzo skips threshold rules on
		// zero values.
		validation.Field(&c.MaxMemoryMB, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Second)),
	)
}
