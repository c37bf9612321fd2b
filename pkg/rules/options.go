package rules

import (
	"errors"
	"fmt"
	"sync"
)

// ProgramCache stores compiled programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapCache is a ProgramCache backed by a map.
type MapCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{programs: map[string]any{}}
}

// Get implements ProgramCache.
func (c *MapCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

// Set implements ProgramCache.
func (c *MapCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs[key] = value
}

// Len returns the number of cached programs.
func (c *MapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// Option configures an engine.
type Option func(*config)

type config struct {
	cache    ProgramCache
	registry *FunctionRegistry
	logger   Logger
	err      error
}

// WithProgramCache shares compiled programs between rules.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes the registry functions to expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

// WithFunction registers a single function, creating a registry when needed.
// A registration failure is returned from every Compile on the engine.
func WithFunction(name string, fn Function) Option {
	return func(cfg *config) {
		if cfg.registry == nil {
			cfg.registry = NewFunctionRegistry()
		}
		if err := cfg.registry.Register(name, fn); err != nil {
			cfg.err = errors.Join(cfg.err, fmt.Errorf("%w: %w", ErrInvalidFunction, err))
		}
	}
}

// WithLogger attaches an evaluation logger.
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	return cfg
}

func (cfg config) cached(key string) (any, bool) {
	if cfg.cache == nil {
		return nil, false
	}
	return cfg.cache.Get(key)
}

func (cfg config) store(key string, program any) {
	if cfg.cache != nil {
		cfg.cache.Set(key, program)
	}
}
