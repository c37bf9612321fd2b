// Package codec turns store snapshots into JSON strings and back, shaping the
// stored object with include/exclude paths and running hooks around decoding.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-store/internal/draft"
)

// Context identifies the payload being processed.
type Context struct {
	Key string
}

// PreHook lets callers rewrite the decoded JSON object before it is applied.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or check the value after decoding.
type PostHook[T any] func(Context, *T) error

// Option configures a Codec.
type Option[T any] func(*Codec[T])

// Codec encodes and decodes values of type T.
type Codec[T any] struct {
	include      [][]string
	exclude      [][]string
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
}

// WithInclude keeps only the given dot paths of the encoded object.
func WithInclude[T any](paths ...string) Option[T] {
	return func(c *Codec[T]) {
		c.include = append(c.include, splitPaths(paths)...)
	}
}

// WithExclude drops the given dot paths from the encoded object.
func WithExclude[T any](paths ...string) Option[T] {
	return func(c *Codec[T]) {
		c.exclude = append(c.exclude, splitPaths(paths)...)
	}
}

// WithPreHook runs hook on the decoded object before it is applied.
func WithPreHook[T any](hook PreHook) Option[T] {
	return func(c *Codec[T]) {
		if hook != nil {
			c.preHooks = append(c.preHooks, hook)
		}
	}
}

// WithPostHook runs hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) Option[T] {
	return func(c *Codec[T]) {
		if hook != nil {
			c.postHooks = append(c.postHooks, hook)
		}
	}
}

// WithDisallowUnknownFields rejects payload keys with no matching field.
func WithDisallowUnknownFields[T any]() Option[T] {
	return func(c *Codec[T]) {
		c.configureDec = append(c.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// New builds a Codec.
func New[T any](opts ...Option[T]) *Codec[T] {
	c := &Codec[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Encode marshals value and applies the include and exclude paths when the
// result is a JSON object.
func (c *Codec[T]) Encode(ctx Context, value T) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("codec: encode %q: %w", ctx.Key, err)
	}
	if len(c.include) == 0 && len(c.exclude) == 0 {
		return string(raw), nil
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("codec: encode %q: %w", ctx.Key, err)
	}
	object, ok := generic.(map[string]any)
	if !ok {
		return string(raw), nil
	}
	if len(c.include) > 0 {
		object = pick(object, c.include)
	}
	for _, path := range c.exclude {
		omit(object, path)
	}

	shaped, err := json.Marshal(object)
	if err != nil {
		return "", fmt.Errorf("codec: encode %q: %w", ctx.Key, err)
	}
	return string(shaped), nil
}

// Decode applies payload over a copy of base, so fields missing from the
// payload keep their base values. base itself is never modified.
func (c *Codec[T]) Decode(ctx Context, payload string, base T) (T, error) {
	var zero T

	raw := []byte(payload)
	if len(c.preHooks) > 0 {
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return zero, fmt.Errorf("codec: decode %q: %w", ctx.Key, err)
		}
		if object, ok := generic.(map[string]any); ok {
			for _, hook := range c.preHooks {
				next, err := hook(ctx, object)
				if err != nil {
					return zero, fmt.Errorf("codec: pre-hook for %q failed: %w", ctx.Key, err)
				}
				if next != nil {
					object = next
				}
			}
			rewritten, err := json.Marshal(object)
			if err != nil {
				return zero, fmt.Errorf("codec: decode %q: %w", ctx.Key, err)
			}
			raw = rewritten
		}
	}

	result := draft.Clone(base)
	decoder := json.NewDecoder(bytes.NewReader(raw))
	for _, configure := range c.configureDec {
		configure(decoder)
	}
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("codec: decode %q: %w", ctx.Key, err)
	}

	for _, hook := range c.postHooks {
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("codec: post-hook for %q failed: %w", ctx.Key, err)
		}
	}
	return result, nil
}

func splitPaths(paths []string) [][]string {
	out := make([][]string, 0, len(paths))
	for _, path := range paths {
		path = strings.Trim(strings.TrimSpace(path), ".")
		if path == "" {
			continue
		}
		out = append(out, strings.Split(path, "."))
	}
	return out
}

func pick(object map[string]any, paths [][]string) map[string]any {
	out := map[string]any{}
	for _, path := range paths {
		value, ok := lookup(object, path)
		if !ok {
			continue
		}
		assign(out, path, value)
	}
	return out
}

func lookup(object map[string]any, path []string) (any, bool) {
	var current any = object
	for _, segment := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func assign(object map[string]any, path []string, value any) {
	current := object
	for _, segment := range path[:len(path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}

func omit(object map[string]any, path []string) {
	current := object
	for _, segment := range path[:len(path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	delete(current, path[len(path)-1])
}
