package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"prestes/internal/storage"
	"prestes/internal/storage/memory"
)

func backends(t *testing.T) map[string]func(t *testing.T) storage.Blobs {
	t.Helper()
	return map[string]func(t *testing.T) storage.Blobs{
		"memory": func(t *testing.T) storage.Blobs { return memory.New() },
		"sqlite": func(t *testing.T) storage.Blobs {
			s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "data", "prestes.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		},
		"bolt": func(t *testing.T) storage.Blobs {
			s, err := storage.NewBoltStore(filepath.Join(t.TempDir(), "prestes.bolt"))
			if err != nil {
				t.Fatalf("open bolt: %v", err)
			}
			return s
		},
	}
}

func TestBlobsContract(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			if _, err := s.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			if err := s.Put(ctx, "k", []byte(`[1]`)); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := s.Put(ctx, "k", []byte(`[1,2]`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := s.Get(ctx, "k")
			if err != nil || string(got) != `[1,2]` {
				t.Fatalf("get = %q, %v", got, err)
			}

			if err := s.Put(ctx, "other", []byte(`{}`)); err != nil {
				t.Fatalf("put other: %v", err)
			}
			if err := s.Delete(ctx, "k", "never-written"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := s.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("expected deleted key to be gone, got %v", err)
			}
			if got, err := s.Get(ctx, "other"); err != nil || string(got) != `{}` {
				t.Fatalf("unrelated key affected: %q, %v", got, err)
			}
		})
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prestes.db")

	s, err := storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put(ctx, "prestes_events", []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Close()

	s, err = storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if got, err := s.Get(ctx, "prestes_events"); err != nil || string(got) != `[]` {
		t.Fatalf("get after reopen = %q, %v", got, err)
	}
}

func TestMemoryQuota(t *testing.T) {
	ctx := context.Background()
	s := memory.NewWithQuota(10)

	if err := s.Put(ctx, "a", []byte("12345")); err != nil {
		t.Fatalf("put within quota: %v", err)
	}
	if err := s.Put(ctx, "b", []byte("123456")); !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	// Replacing a value only counts the difference.
	if err := s.Put(ctx, "a", []byte("1234567890")); err != nil {
		t.Fatalf("replace within quota: %v", err)
	}
	if s.Size() != 10 {
		t.Fatalf("expected size 10, got %d", s.Size())
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if s.Size() != 0 {
		t.Fatalf("expected size 0 after delete, got %d", s.Size())
	}
}
