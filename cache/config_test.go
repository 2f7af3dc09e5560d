package cache

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing addr", func(c *Config) { c.Addr = "" }, true},
		{"zero memory ceiling", func(c *Config) { c.MaxMemoryMB = 0 }, true},
		{"sub-second ttl", func(c *Config) { c.TTL = 100 * time.Millisecond }, true},
		{"negative db", func(c *Config) { c.DB = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Addr != "localhost:6379" {
		t.Errorf("unexpected default addr %q", cfg.Addr)
	}
	if cfg.MaxMemoryMB != 10 {
		t.Errorf("unexpected default memory ceiling %d", cfg.MaxMemoryMB)
	}
	if cfg.TTL != time.Hour {
		t.Errorf("unexpected default TTL %v", cfg.TTL)
	}
}
