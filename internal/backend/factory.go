package backend

import (
	"context"
	"fmt"

	"prestes/internal/log"
	"prestes/internal/storage"
	"prestes/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.ForComponent(log.ComponentBackend)
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		blobs storage.Blobs
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		blobs, err = storage.NewSQLiteStore(config.SQLiteDBPath)
	case BoltBackend:
		blobs, err = storage.NewBoltStore(config.BoltDBPath)
	case PostgresBackend:
		blobs, err = storage.NewPostgresStore(ctx, config.PostgresDSN)
	case MemoryBackend:
		blobs = memory.NewWithQuota(config.MemoryQuotaBytes)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", config.Type, err)
	}

	f.logger.InfoContext(ctx, "Initialized durable layer", log.FieldBackend, config.Type.String())

	return &BackendResult{
		Blobs:   blobs,
		Cleanup: blobs.Close,
	}, nil
}
