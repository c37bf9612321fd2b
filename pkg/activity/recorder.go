package activity

import (
	"context"
	"sync"
)

// Recorder keeps every event it receives. It is meant for tests and examples.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	// Err is returned from every Notify call.
	Err error
}

// Notify implements Hook.
func (r *Recorder) Notify(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Verbs returns the recorded verbs in order.
func (r *Recorder) Verbs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	verbs := make([]string, len(r.events))
	for i, event := range r.events {
		verbs[i] = event.Verb
	}
	return verbs
}
