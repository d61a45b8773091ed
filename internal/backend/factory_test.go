package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"prestes/internal/config"
	"prestes/internal/storage"
)

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "prestes.db")}},
		{"bolt", Config{Type: BoltBackend, BoltDBPath: filepath.Join(dir, "prestes.bolt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := NewFactory(nil).CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer res.Cleanup()

			if err := res.Blobs.Put(ctx, "k", []byte("v")); err != nil {
				t.Fatal(err)
			}
			got, err := res.Blobs.Get(ctx, "k")
			if err != nil || string(got) != "v" {
				t.Fatalf("Get() = %q, %v", got, err)
			}
		})
	}
}

func TestCreateBackendMemoryQuota(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, MemoryQuotaBytes: 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.Blobs.Put(ctx, "k", []byte("too large")); !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"unknown type", Config{Type: "sheets"}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"bolt without path", Config{Type: BoltBackend}, true},
		{"postgres without dsn", Config{Type: PostgresBackend}, true},
		{"negative quota", Config{Type: MemoryBackend, MemoryQuotaBytes: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	got, err := FromAppConfig(&config.Config{DataBackend: "bolt", BoltDBPath: "x.bolt", MemoryQuotaBytes: 10})
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != BoltBackend || got.BoltDBPath != "x.bolt" || got.MemoryQuotaBytes != 10 {
		t.Fatalf("unexpected backend config %+v", got)
	}
}
