// Package store provides a single-value state container whose writes pass
// through hookable middleware stages, with selector-filtered subscriptions.
//
//	s, err := store.Of(Cart{}, store.PipeMiddlewares(validation, history))
//	unsubscribe, err := store.SubscribeSelector(s, func(c Cart) int { return c.Total }, onTotal)
//	err = store.Swap(s, func(c Cart) Cart { c.Total += 10; return c })
//
// A write runs every TransformState handler in registration order, then the
// StateWillChange handlers, then assigns the state, then runs the
// StateDidChange handlers and finally notifies subscribers whose selected
// slice changed. An error from TransformState or StateWillChange leaves the
// store untouched. An error from StateDidChange is returned after the state
// has been committed and subscribers have been notified.
package store

import (
	"slices"
	"time"

	"github.com/goliatone/go-store/hookable"
	"github.com/goliatone/go-store/internal/draft"
	"github.com/goliatone/go-store/pkg/activity"
	"github.com/google/uuid"
)

const (
	opDeref     = "deref"
	opSubscribe = "subscribe"
)

// Of builds a store. middleware, when non-nil, runs once before the initial
// write so its handlers see initial like any later value. Any error from the
// middleware or from the initial write aborts construction.
func Of[S any](initial S, middleware Middleware[S], opts ...Option) (*Store[S], error) {
	start := time.Now()
	s := &Store[S]{
		id:  uuid.New(),
		cfg: applyOptions(opts),
	}
	s.self = s
	s.write = hookable.New(s.commit)

	if middleware != nil {
		if err := middleware(s, Hooks[S]{write: s.write}); err != nil {
			s.logWrite(OpOf, start, false, 0, err, nil)
			return nil, err
		}
	}

	if _, err := s.write.Call(initial); err != nil {
		s.logWrite(OpOf, start, false, 0, err, nil)
		return nil, err
	}

	activityErr := s.emitActivity(activity.VerbStoreCreated, OpOf, nil, s.state)
	s.logWrite(OpOf, start, true, 0, nil, activityErr)
	return s, nil
}

// Deref returns the current state.
func Deref[S any](s *Store[S]) (S, error) {
	if err := assertStore(opDeref, s); err != nil {
		var zero S
		return zero, err
	}
	return s.state, nil
}

// Set writes value through the store hooks and notifies subscribers.
func Set[S any](s *Store[S], value S) error {
	if err := assertStore(OpSet, s); err != nil {
		return err
	}
	return s.apply(OpSet, value)
}

// Swap applies recipe to a private copy of the current state and writes the
// result. When the recipe leaves the copy equal to the current state, the
// current value itself is written back so reference-based selectors see no
// change.
func Swap[S any](s *Store[S], recipe func(draft S) S) error {
	if err := assertStore(OpSwap, s); err != nil {
		return err
	}
	if recipe == nil {
		return nilFunc(OpSwap, "recipe")
	}
	return s.apply(OpSwap, draft.Produce(s.state, recipe))
}

// Subscribe registers callback for every write that changes the state.
// The returned function removes this subscription and is safe to call twice.
func Subscribe[S any](s *Store[S], callback SubscriptionCallback[S]) (func(), error) {
	return SubscribeSelector(s, func(state S) S { return state }, callback)
}

// SubscribeSelector registers callback for writes where selector yields a
// different value for the previous and the committed state.
func SubscribeSelector[S, R any](s *Store[S], selector Selector[S, R], callback SubscriptionCallback[S]) (func(), error) {
	if err := assertStore(opSubscribe, s); err != nil {
		return nil, err
	}
	if selector == nil {
		return nil, nilFunc(opSubscribe, "selector")
	}
	if callback == nil {
		return nil, nilFunc(opSubscribe, "callback")
	}

	sub := &subscription[S]{
		changed: func(previous, current S) bool {
			return !same(selector(previous), selector(current))
		},
		callback: callback,
	}
	s.subscriptions = append(slices.Clip(s.subscriptions), sub)

	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		s.unsubscribe(sub)
	}, nil
}

// ID returns the identifier stamped by Of, or uuid.Nil for invalid stores.
func (s *Store[S]) ID() uuid.UUID {
	if !IsStore(s) {
		return uuid.Nil
	}
	return s.id
}

// Name returns the name given with WithName.
func (s *Store[S]) Name() string {
	if !IsStore(s) {
		return ""
	}
	return s.cfg.name
}

// Version returns the number of writes committed since Of, the initial write
// included. A write vetoed before assignment leaves it unchanged.
func (s *Store[S]) Version() uint64 {
	if !IsStore(s) {
		return 0
	}
	return s.version
}

// Subscribers returns the number of active subscriptions.
func (s *Store[S]) Subscribers() int {
	if !IsStore(s) {
		return 0
	}
	return len(s.subscriptions)
}

func (s *Store[S]) commit(next S) (S, error) {
	s.state = next
	s.version++
	return next, nil
}

func (s *Store[S]) apply(op string, value S) error {
	start := time.Now()
	previous := s.state
	version := s.version

	_, err := s.write.Call(value)
	if s.version == version {
		s.logWrite(op, start, false, 0, err, nil)
		return err
	}

	current := s.state
	notified := s.notify(previous, current)
	activityErr := s.emitActivity(activity.VerbStoreUpdated, op, previous, current)
	s.logWrite(op, start, true, notified, err, activityErr)
	return err
}

func (s *Store[S]) notify(previous, current S) int {
	notified := 0
	event := StateChangedEvent[S]{Previous: previous, Current: current}
	for _, sub := range s.subscriptions {
		if sub.changed(previous, current) {
			sub.callback(event)
			notified++
		}
	}
	return notified
}

func (s *Store[S]) unsubscribe(target *subscription[S]) {
	next := make([]*subscription[S], 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		if sub != target {
			next = append(next, sub)
		}
	}
	s.subscriptions = next
}

func (s *Store[S]) label() string {
	if s.cfg.name != "" {
		return s.cfg.name
	}
	return s.id.String()
}

func (s *Store[S]) logWrite(op string, start time.Time, committed bool, notified int, err, activityErr error) {
	s.cfg.writeLogger().LogWrite(WriteLogEvent{
		Store:       s.label(),
		Op:          op,
		Duration:    time.Since(start),
		Committed:   committed,
		Notified:    notified,
		Err:         err,
		ActivityErr: activityErr,
		Context:     s.cfg.context(),
	})
}
