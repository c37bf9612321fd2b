package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStore is returned when a store argument was not built by Of.
	ErrInvalidStore = errors.New("invalid store")
	// ErrNilFunc is returned when a required recipe, selector or callback is nil.
	ErrNilFunc = errors.New("nil function")
	// ErrExtensionExists is returned when an extension key is already taken.
	ErrExtensionExists = errors.New("extension already registered")
	// ErrInvalidExtensionKey is returned for nil or non-comparable extension keys.
	ErrInvalidExtensionKey = errors.New("invalid extension key")
)

func invalidStore(op string) error {
	return fmt.Errorf("store: %s: %w", op, ErrInvalidStore)
}

func nilFunc(op, what string) error {
	return fmt.Errorf("store: %s: %s: %w", op, what, ErrNilFunc)
}

// IsStore reports whether s was built by Of.
func IsStore[S any](s *Store[S]) bool {
	return s != nil && s.self == s && s.write != nil
}

func assertStore[S any](op string, s *Store[S]) error {
	if !IsStore(s) {
		return invalidStore(op)
	}
	return nil
}
