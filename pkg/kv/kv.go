// Package kv defines the string key-value contract used to persist store
// snapshots, with in-memory and SQLite backends.
//
// The contract mirrors what the persistence middleware needs and nothing more:
//
//	Get(ctx, key) -> (value, found, err)
//	Set(ctx, key, value) -> err
//
// Backends are safe for concurrent use.
package kv

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrKeyRequired is returned when an empty key is used.
	ErrKeyRequired = errors.New("kv: key required")
	// ErrUnknownDriver is returned by Open for unsupported drivers.
	ErrUnknownDriver = errors.New("kv: unknown driver")
	// ErrClosed is returned by a backend used after Close.
	ErrClosed = errors.New("kv: storage closed")
)

// Storage reads and writes string values by key.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Backend is a Storage that owns resources.
type Backend interface {
	Storage
	Close() error
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrKeyRequired
	}
	return key, nil
}
