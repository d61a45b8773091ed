package backend

import (
	"errors"
	"fmt"

	"prestes/internal/config"
)

// FromAppConfig picks the backend settings out of the process config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("backend: nil config")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("backend: unknown DATA_BACKEND %q (valid: %v)", appConfig.DataBackend, GetBackendTypes())
	}

	return Config{
		Type:             backendType,
		SQLiteDBPath:     appConfig.SQLiteDBPath,
		BoltDBPath:       appConfig.BoltDBPath,
		PostgresDSN:      appConfig.PostgresDSN,
		MemoryQuotaBytes: appConfig.MemoryQuotaBytes,
	}, nil
}

// Validate checks that the selected backend has what it needs to open.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("backend: unknown type %q", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("backend: sqlite needs SQLITE_DB_PATH")
		}
	case BoltBackend:
		if c.BoltDBPath == "" {
			return errors.New("backend: bolt needs BOLT_DB_PATH")
		}
	case PostgresBackend:
		if c.PostgresDSN == "" {
			return errors.New("backend: postgres needs POSTGRES_DSN")
		}
	case MemoryBackend:
		if c.MemoryQuotaBytes < 0 {
			return errors.New("backend: memory quota must not be negative")
		}
	}

	return nil
}

// GetBackendTypes lists the accepted DATA_BACKEND values.
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, BoltBackend, PostgresBackend}
}
