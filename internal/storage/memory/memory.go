// Package memory is an in-process blob store. With a quota it rejects writes
// that would grow the stored bytes past the limit, the way browser local
// storage does.
package memory

import (
	"context"
	"sync"

	"prestes/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	quota int // 0 means unlimited
	size  int
	items map[string][]byte
}

func New() *Store {
	return NewWithQuota(0)
}

func NewWithQuota(quotaBytes int) *Store {
	return &Store{quota: quotaBytes, items: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.size - len(s.items[key]) + len(value)
	if s.quota > 0 && next > s.quota {
		return storage.ErrQuotaExceeded
	}
	s.items[key] = append([]byte(nil), value...)
	s.size = next
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.size -= len(s.items[k])
		delete(s.items, k)
	}
	return nil
}

// SetQuota changes the limit. Existing values are kept even if they already
// exceed it.
func (s *Store) SetQuota(quotaBytes int) {
	s.mu.Lock()
	s.quota = quotaBytes
	s.mu.Unlock()
}

// Size reports the bytes currently stored.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *Store) Close() error { return nil }
