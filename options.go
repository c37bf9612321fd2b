package store

import (
	"context"

	"github.com/goliatone/go-store/pkg/activity"
)

// Option configures a store at construction.
type Option func(*storeConfig)

type storeConfig struct {
	name          string
	logger        Logger
	activityHooks activity.Hooks
	channel       string
	actor         activity.Actor
	ctx           context.Context
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithName labels the store in log and activity events.
func WithName(name string) Option {
	return func(cfg *storeConfig) {
		cfg.name = name
	}
}

// WithContext sets the context handed to activity hooks and write loggers.
func WithContext(ctx context.Context) Option {
	return func(cfg *storeConfig) {
		cfg.ctx = ctx
	}
}

func (c storeConfig) context() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

func (c storeConfig) writeLogger() Logger {
	if c.logger != nil {
		return c.logger
	}
	return noopLogger{}
}
