// Package timetravel records committed store states and moves between them.
//
// History is kept newest first with a cursor. An organic write drops every
// state ahead of the cursor, prepends the new state and trims the list to the
// configured depth. Undo and Redo move the cursor and write the recorded
// state back through the store without recording it again.
package timetravel

import (
	"errors"
	"fmt"

	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/hookable"
)

// DefaultDepth is used when Options.Depth is zero.
const DefaultDepth = 1

var (
	ErrInvalidDepth        = errors.New("timetravel: depth must be greater than 0")
	ErrNegativeSteps       = errors.New("timetravel: steps must be greater than or equal to 0")
	ErrOutOfBoundsBackward = errors.New("timetravel: not enough states in history to go backward")
	ErrOutOfBoundsForward  = errors.New("timetravel: not enough states in history to go forward")
	ErrNotTimetravelStore  = errors.New("timetravel: store was not built with the timetravel middleware")
)

// Options configures the middleware.
type Options struct {
	// Depth is the number of states kept, current included.
	Depth int
}

// History is a view of the recorded states. Past and Future are ordered
// newest first.
type History[S any] struct {
	Past    []S
	Current S
	Future  []S
}

type historyKey struct{}

type history[S any] struct {
	depth     int
	states    []S
	index     int
	traveling bool
}

// New returns the timetravel middleware.
func New[S any](opts Options) store.Middleware[S] {
	depth := opts.Depth
	if depth == 0 {
		depth = DefaultDepth
	}
	return func(s *store.Store[S], hooks store.Hooks[S]) error {
		if depth < 1 {
			return fmt.Errorf("%w, got %d", ErrInvalidDepth, depth)
		}
		h := &history[S]{depth: depth}
		if err := s.SetExtension(historyKey{}, h); err != nil {
			return fmt.Errorf("timetravel: %w", err)
		}
		hooks.StateDidChange(hookable.EveryTap(h.record))
		return nil
	}
}

func (h *history[S]) record(state S) error {
	if h.traveling {
		h.traveling = false
		return nil
	}
	next := make([]S, 0, min(len(h.states)-h.index+1, h.depth))
	next = append(next, state)
	for _, past := range h.states[h.index:] {
		if len(next) == h.depth {
			break
		}
		next = append(next, past)
	}
	h.states = next
	h.index = 0
	return nil
}

// Undo moves steps states back in history. Zero steps is a no-op.
func Undo[S any](s *store.Store[S], steps int) error {
	if steps < 0 {
		return fmt.Errorf("%w, got %d", ErrNegativeSteps, steps)
	}
	return navigate(s, steps)
}

// Redo moves steps states forward in history. Zero steps is a no-op.
func Redo[S any](s *store.Store[S], steps int) error {
	if steps < 0 {
		return fmt.Errorf("%w, got %d", ErrNegativeSteps, steps)
	}
	return navigate(s, -steps)
}

// Deref returns the recorded history of s.
func Deref[S any](s *store.Store[S]) (History[S], error) {
	h, err := lookup(s)
	if err != nil {
		return History[S]{}, err
	}
	var out History[S]
	if len(h.states) == 0 {
		return out, nil
	}
	out.Current = h.states[h.index]
	out.Future = append([]S(nil), h.states[:h.index]...)
	out.Past = append([]S(nil), h.states[h.index+1:]...)
	return out, nil
}

func navigate[S any](s *store.Store[S], offset int) error {
	h, err := lookup(s)
	if err != nil {
		return err
	}
	if offset == 0 {
		return nil
	}

	target := h.index + offset
	if target >= len(h.states) {
		return ErrOutOfBoundsBackward
	}
	if target < 0 {
		return ErrOutOfBoundsForward
	}

	previous := h.index
	version := s.Version()
	h.index = target
	h.traveling = true
	err = store.Set(s, h.states[target])
	// record does not run when the write is vetoed or an earlier did-change
	// handler fails, so the flag may still be set here
	h.traveling = false
	if s.Version() == version {
		h.index = previous
	}
	return err
}

func lookup[S any](s *store.Store[S]) (*history[S], error) {
	if !store.IsStore(s) {
		return nil, fmt.Errorf("%w: %w", ErrNotTimetravelStore, store.ErrInvalidStore)
	}
	h, ok := store.LookupExtension[*history[S]](s, historyKey{})
	if !ok {
		return nil, ErrNotTimetravelStore
	}
	return h, nil
}
