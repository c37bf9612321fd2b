package store

import (
	"github.com/goliatone/go-store/hookable"
	"github.com/google/uuid"
)

// Store is a mutable cell holding a single value of type S. Every write goes
// through a hookable function so middlewares can transform, veto or observe
// it. Stores are only valid when built by Of.
//
// A Store is driven by a single goroutine; nothing in it is locked.
type Store[S any] struct {
	self    *Store[S]
	id      uuid.UUID
	state   S
	version uint64
	write   *hookable.Func[S, S]

	subscriptions []*subscription[S]
	extensions    map[any]any
	cfg           storeConfig
}

// Hooks exposes the store lifecycle to middlewares.
type Hooks[S any] struct {
	write *hookable.Func[S, S]
}

// TransformState registers a handler invoked for every requested state
// change. It can replace the incoming state before anything else sees it.
func (h Hooks[S]) TransformState(hook hookable.Hook[hookable.Transform[S]]) *hookable.Subscription {
	return h.write.TransformInput(hook)
}

// StateWillChange registers a handler invoked after every TransformState
// handler and before the state is assigned. Returning an error vetoes the
// write.
func (h Hooks[S]) StateWillChange(hook hookable.Hook[hookable.Tap[S]]) *hookable.Subscription {
	return h.write.Enter(hook)
}

// StateDidChange registers a handler invoked once the state has been assigned.
func (h Hooks[S]) StateDidChange(hook hookable.Hook[hookable.Tap[S]]) *hookable.Subscription {
	return h.write.Leave(hook)
}

// Middleware runs once during Of, before the initial write, to register hooks.
type Middleware[S any] func(store *Store[S], hooks Hooks[S]) error

// StateChangedEvent carries the values on both sides of a write.
type StateChangedEvent[S any] struct {
	Previous S
	Current  S
}

// Selector projects the state onto the slice a subscriber cares about.
type Selector[S, R any] func(state S) R

// SubscriptionCallback receives change events.
type SubscriptionCallback[S any] func(event StateChangedEvent[S])

type subscription[S any] struct {
	changed  func(previous, current S) bool
	callback SubscriptionCallback[S]
}
