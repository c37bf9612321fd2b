// Package activity delivers store lifecycle events to audit hooks.
package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Verbs of store lifecycle events.
const (
	VerbStoreCreated = "store.created"
	VerbStoreUpdated = "store.updated"
)

// ObjectType is the audit object type of every store event.
const ObjectType = "store"

// DefaultChannel is used when an event carries no channel.
const DefaultChannel = "store"

// Actor identifies who caused a write. Fields are plain strings so callers are
// free to use any identifier scheme.
type Actor struct {
	ID       string
	UserID   string
	TenantID string
}

// Event is emitted once after a store is built and once per committed write.
type Event struct {
	Verb       string
	StoreID    string
	StoreName  string
	Op         string
	Previous   any
	Current    any
	Actor      Actor
	Channel    string
	OccurredAt time.Time
}

// ObjectID is the store id, or its name when the id is empty.
func (e Event) ObjectID() string {
	if e.StoreID != "" {
		return e.StoreID
	}
	return e.StoreName
}

// Data flattens the store details into a payload map for audit sinks.
func (e Event) Data() map[string]any {
	data := map[string]any{}
	if e.StoreName != "" {
		data["store_name"] = e.StoreName
	}
	if e.Op != "" {
		data["op"] = e.Op
	}
	if e.Previous != nil {
		data["previous"] = e.Previous
	}
	if e.Current != nil {
		data["current"] = e.Current
	}
	return data
}

func (e Event) stamped() Event {
	e.Channel = strings.TrimSpace(e.Channel)
	if e.Channel == "" {
		e.Channel = DefaultChannel
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	return e
}

// Hook receives store events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify implements Hook.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans an event out to several hooks.
type Hooks []Hook

// Compact returns a copy without nil hooks, or nil when none remain.
func (h Hooks) Compact() Hooks {
	var out Hooks
	for _, hook := range h {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}

// Notify stamps the default channel and time on event, sends it to every
// hook and joins their errors. Events without a verb are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 || event.Verb == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event = event.stamped()

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
