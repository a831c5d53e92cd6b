package kv

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned by every backend when asked to address the empty key.
var ErrEmptyKey = errors.New("kv: empty key")

// Store is a string key-value store holding whole documents under a single key.
// Get reports a missing key with ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by backends that hold connections.
type Closer interface {
	Close() error
}
