package store

import (
	"fmt"
	"reflect"
)

const opSetExtension = "set extension"

// SetExtension attaches middleware-private state to the store under key.
// Keys should be values of an unexported type owned by the caller. A key can
// be set once; store a pointer to mutate the value later.
func (s *Store[S]) SetExtension(key, value any) error {
	if err := assertStore(opSetExtension, s); err != nil {
		return err
	}
	if !validExtensionKey(key) {
		return fmt.Errorf("store: %s: %w", opSetExtension, ErrInvalidExtensionKey)
	}
	if _, ok := s.extensions[key]; ok {
		return fmt.Errorf("store: %s: %T: %w", opSetExtension, key, ErrExtensionExists)
	}
	if s.extensions == nil {
		s.extensions = make(map[any]any)
	}
	s.extensions[key] = value
	return nil
}

// Extension returns the value stored under key.
func (s *Store[S]) Extension(key any) (any, bool) {
	if !IsStore(s) || !validExtensionKey(key) {
		return nil, false
	}
	value, ok := s.extensions[key]
	return value, ok
}

// LookupExtension returns the extension under key asserted to T.
func LookupExtension[T, S any](s *Store[S], key any) (T, bool) {
	value, ok := s.Extension(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := value.(T)
	return typed, ok
}

func validExtensionKey(key any) bool {
	return key != nil && reflect.TypeOf(key).Comparable()
}
