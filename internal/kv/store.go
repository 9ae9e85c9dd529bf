// Package kv defines the key-value persistence contract the notice and profile
// repositories are built on, plus an in-memory implementation.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get for an absent key.
	ErrNotFound = errors.New("kv: key not found")
	// ErrVersionConflict is returned by CompareAndSwap when the stored version
	// differs from the expected one.
	ErrVersionConflict = errors.New("kv: version conflict")
)

// Record is a stored value with its version stamp. Versions start at 1 and
// grow by one on every write of the key.
type Record struct {
	Key     string
	Value   []byte
	Version int64
}

type Store interface {
	Get(ctx context.Context, key string) (Record, error)
	// Put writes unconditionally and returns the new version.
	Put(ctx context.Context, key string, value []byte) (int64, error)
	// ScanPrefix returns every record whose key starts with prefix, in key order.
	ScanPrefix(ctx context.Context, prefix string) ([]Record, error)
	// CompareAndSwap writes value only when the current version equals
	// expected. An expected version of 0 means the key must not exist.
	CompareAndSwap(ctx context.Context, key string, expected int64, value []byte) (int64, error)
	Close() error
}
