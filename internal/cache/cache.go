// Package cache defines the key-value cache boundary.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key is absent.
var ErrKeyNotFound = errors.New("cache: key not found")

// Op constants map to Redis/Valkey command names for error context.
const (
	OpGet  = "GET"
	OpSet  = "SET"
	OpPing = "PING"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Store is the key-value cache contract.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close()
}
