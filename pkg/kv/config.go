package kv

import (
	"context"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config selects and configures a backend.
type Config struct {
	Driver string `env:"STORE_KV_DRIVER" envDefault:"memory"`
	DSN    string `env:"STORE_KV_DSN" envDefault:"store.db"`
	Table  string `env:"STORE_KV_TABLE" envDefault:"store_kv"`
}

// ParseEnv loads Config from STORE_KV_* environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Open builds the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", DriverMemory:
		return NewMemoryStorage(), nil
	case DriverSQLite:
		backend, err := OpenSQLite(ctx, cfg.DSN, cfg.Table)
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
