// Package storage provides the durable keyed-blob layer the record store
// writes through. Every backend stores opaque values under string keys and
// replaces a key's value in a single write.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key has never been written or
	// has been deleted.
	ErrNotFound = errors.New("storage: key not found")
	// ErrQuotaExceeded is returned by backends with a size limit when a Put
	// would exceed it.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Blobs is a keyed blob store.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
