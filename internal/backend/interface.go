package backend

import (
	"context"

	"prestes/internal/storage"
)

// CleanupFunc releases whatever a backend opened.
type CleanupFunc func() error

// BackendResult is an opened blob store plus the func that closes it.
type BackendResult struct {
	Blobs   storage.Blobs
	Cleanup CleanupFunc
}

// Factory opens the blob store selected by Config.Type.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects a backend and carries the settings only that backend reads.
type Config struct {
	Type BackendType

	SQLiteDBPath string
	BoltDBPath   string
	PostgresDSN  string

	// Zero means unlimited.
	MemoryQuotaBytes int
}

// BackendType names a blob store implementation, as written in DATA_BACKEND.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	BoltBackend     BackendType = "bolt"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid reports whether bt is one of the known backends.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, BoltBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
