// Package persist mirrors store state into a kv.Storage as JSON and seeds the
// store from it on construction.
//
// On the first write, the one Of performs, the stored value for the key is
// decoded over the initial state. That write is not stored again. Every later
// committed state is encoded and written under the key.
package persist

import (
	"context"
	"fmt"
	"strings"

	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/hookable"
	"github.com/goliatone/go-store/internal/codec"
	"github.com/goliatone/go-store/pkg/kv"
)

// Option configures the middleware.
type Option func(*config)

type config struct {
	storage      kv.Storage
	include      []string
	exclude      []string
	ctx          context.Context
	decodeHooks  []DecodeHook
	checks       []any
	strictDecode bool
}

// DecodeHook rewrites the stored JSON object before it is applied over the
// initial state. Returning a nil map keeps the object unchanged.
type DecodeHook func(key string, object map[string]any) (map[string]any, error)

// WithStorage sets the backing storage. Defaults to a new kv.MemoryStorage.
func WithStorage(storage kv.Storage) Option {
	return func(cfg *config) {
		if storage != nil {
			cfg.storage = storage
		}
	}
}

// WithInclude stores only the given dot paths of the JSON object form.
func WithInclude(paths ...string) Option {
	return func(cfg *config) {
		cfg.include = append(cfg.include, paths...)
	}
}

// WithExclude drops the given dot paths from the stored JSON object.
func WithExclude(paths ...string) Option {
	return func(cfg *config) {
		cfg.exclude = append(cfg.exclude, paths...)
	}
}

// WithContext sets the context passed to storage calls.
func WithContext(ctx context.Context) Option {
	return func(cfg *config) {
		if ctx != nil {
			cfg.ctx = ctx
		}
	}
}

// WithDecodeHook runs hook on the stored object while seeding, for example to
// migrate renamed fields.
func WithDecodeHook(hook DecodeHook) Option {
	return func(cfg *config) {
		if hook != nil {
			cfg.decodeHooks = append(cfg.decodeHooks, hook)
		}
	}
}

// WithRestoreCheck runs check on the restored state before it is written. An
// error fails the seeding write. S must match the store state type.
func WithRestoreCheck[S any](check func(key string, restored *S) error) Option {
	return func(cfg *config) {
		if check != nil {
			cfg.checks = append(cfg.checks, check)
		}
	}
}

// WithStrictDecode rejects stored payloads with fields the state does not have.
func WithStrictDecode() Option {
	return func(cfg *config) {
		cfg.strictDecode = true
	}
}

// New returns the persistence middleware for key.
func New[S any](key string, opts ...Option) store.Middleware[S] {
	cfg := config{ctx: context.Background()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.storage == nil {
		cfg.storage = kv.NewMemoryStorage()
	}
	key = strings.TrimSpace(key)
	codecOpts := []codec.Option[S]{
		codec.WithInclude[S](cfg.include...),
		codec.WithExclude[S](cfg.exclude...),
	}
	for _, hook := range cfg.decodeHooks {
		codecOpts = append(codecOpts, codec.WithPreHook[S](func(ctx codec.Context, object map[string]any) (map[string]any, error) {
			return hook(ctx.Key, object)
		}))
	}
	var checkErr error
	for _, check := range cfg.checks {
		typed, ok := check.(func(string, *S) error)
		if !ok {
			checkErr = fmt.Errorf("persist: restore check %T does not match state type", check)
			break
		}
		codecOpts = append(codecOpts, codec.WithPostHook[S](func(ctx codec.Context, restored *S) error {
			return typed(ctx.Key, restored)
		}))
	}
	if cfg.strictDecode {
		codecOpts = append(codecOpts, codec.WithDisallowUnknownFields[S]())
	}
	c := codec.New(codecOpts...)

	return func(_ *store.Store[S], hooks store.Hooks[S]) error {
		if key == "" {
			return fmt.Errorf("persist: %w", kv.ErrKeyRequired)
		}
		if checkErr != nil {
			return checkErr
		}

		skip := false
		hooks.TransformState(hookable.OnceTransform(func(state S) (S, error) {
			raw, ok, err := cfg.storage.Get(cfg.ctx, key)
			if err != nil {
				return state, fmt.Errorf("persist: load %q: %w", key, err)
			}
			if !ok || raw == "" {
				return state, nil
			}
			restored, err := c.Decode(codec.Context{Key: key}, raw, state)
			if err != nil {
				return state, fmt.Errorf("persist: %w", err)
			}
			skip = true
			return restored, nil
		}))

		hooks.StateDidChange(hookable.EveryTap(func(state S) error {
			if skip {
				skip = false
				return nil
			}
			raw, err := c.Encode(codec.Context{Key: key}, state)
			if err != nil {
				return fmt.Errorf("persist: %w", err)
			}
			if err := cfg.storage.Set(cfg.ctx, key, raw); err != nil {
				return fmt.Errorf("persist: save %q: %w", key, err)
			}
			return nil
		}))
		return nil
	}
}
