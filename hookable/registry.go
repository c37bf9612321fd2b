package hookable

import "github.com/google/uuid"

type entry[H any] struct {
	id      uuid.UUID
	handler H
}

// registry keeps handlers in subscription order. Removal rebuilds the slice so
// a snapshot taken by an in-flight pass is never modified underneath it.
type registry[H any] struct {
	entries []entry[H]
}

func (r *registry[H]) add(id uuid.UUID, handler H) {
	next := make([]entry[H], len(r.entries), len(r.entries)+1)
	copy(next, r.entries)
	r.entries = append(next, entry[H]{id: id, handler: handler})
}

func (r *registry[H]) remove(id uuid.UUID) bool {
	for i, e := range r.entries {
		if e.id != id {
			continue
		}
		next := make([]entry[H], 0, len(r.entries)-1)
		next = append(next, r.entries[:i]...)
		next = append(next, r.entries[i+1:]...)
		r.entries = next
		return true
	}
	return false
}

func (r *registry[H]) snapshot() []H {
	if len(r.entries) == 0 {
		return nil
	}
	handlers := make([]H, len(r.entries))
	for i, e := range r.entries {
		handlers[i] = e.handler
	}
	return handlers
}

func (r *registry[H]) len() int {
	return len(r.entries)
}

// Subscription is the handle for one registration.
type Subscription struct {
	id     uuid.UUID
	active bool
	remove func(uuid.UUID) bool
}

// ID returns the identity token of the registration.
func (s *Subscription) ID() uuid.UUID {
	if s == nil {
		return uuid.Nil
	}
	return s.id
}

// Active reports whether the handler is still registered.
func (s *Subscription) Active() bool {
	return s != nil && s.active
}

// Unsubscribe removes the handler. Calls after the first are no-ops.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active {
		return
	}
	s.active = false
	if s.remove != nil {
		s.remove(s.id)
	}
}

func subscribe[H any](r *registry[H], hook Hook[H]) *Subscription {
	sub := &Subscription{id: uuid.New()}
	if hook == nil {
		return sub
	}
	sub.active = true
	sub.remove = r.remove

	// The factory may call unsubscribe before it returns; in that case the
	// handler is never installed.
	handler := hook(sub.Unsubscribe)
	if !sub.active || isNil(handler) {
		sub.active = false
		return sub
	}
	r.add(sub.id, handler)
	return sub
}

func isNil[H any](handler H) bool {
	switch h := any(handler).(type) {
	case nil:
		return true
	case interface{ isNilHandler() bool }:
		return h.isNilHandler()
	}
	return false
}

func (t Transform[T]) isNilHandler() bool { return t == nil }

func (t Tap[T]) isNilHandler() bool { return t == nil }
