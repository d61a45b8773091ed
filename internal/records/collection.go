package records

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"prestes/internal/core"
	"prestes/internal/log"
)

// Record is anything stored in a collection.
type Record interface {
	RecordID() string
}

// Collection is one persisted list of records. Each read-modify-write holds
// the collection lock; the change signal fires after it is released.
type Collection[T Record] struct {
	mu    sync.Mutex
	key   string
	name  string
	store *Store
}

func newCollection[T Record](s *Store, key, name string) *Collection[T] {
	return &Collection[T]{key: key, name: name, store: s}
}

// Get returns the stored records, or an empty slice if nothing usable is
// stored.
func (c *Collection[T]) Get(ctx context.Context) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *Collection[T]) load(ctx context.Context) []T {
	var items []T
	ok := c.store.read(ctx, c.key, func(raw []byte) error {
		return json.Unmarshal(raw, &items)
	})
	if !ok || items == nil {
		return []T{}
	}
	return items
}

// Save replaces the whole collection.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	_, err := c.mutate(ctx, log.OpSave, "", func([]T) ([]T, bool) {
		return items, true
	})
	return err
}

// Add appends item and returns the collection it attempted to persist.
func (c *Collection[T]) Add(ctx context.Context, item T) ([]T, error) {
	return c.mutate(ctx, log.OpAdd, item.RecordID(), func(items []T) ([]T, bool) {
		return append(items, item), true
	})
}

// Update replaces the record with item's id. When no record matches nothing
// is written and no signal fires.
func (c *Collection[T]) Update(ctx context.Context, item T) ([]T, error) {
	id := item.RecordID()
	return c.mutate(ctx, log.OpUpdate, id, func(items []T) ([]T, bool) {
		i := slices.IndexFunc(items, func(r T) bool { return r.RecordID() == id })
		if i < 0 {
			return items, false
		}
		items[i] = item
		return items, true
	})
}

// Modify rewrites the record with id through fn while the collection is
// locked, so concurrent changes to the same record are applied in turn rather
// than overwriting each other. It returns the rewritten record and the
// collection it attempted to persist, or ErrRecordNotFound.
func (c *Collection[T]) Modify(ctx context.Context, id string, fn func(T) T) (T, []T, error) {
	var (
		updated T
		found   bool
	)
	attempted, err := c.mutate(ctx, log.OpUpdate, id, func(items []T) ([]T, bool) {
		i := slices.IndexFunc(items, func(r T) bool { return r.RecordID() == id })
		if i < 0 {
			return items, false
		}
		items[i] = fn(items[i])
		updated, found = items[i], true
		return items, true
	})
	if err == nil && !found {
		err = ErrRecordNotFound
	}
	return updated, attempted, err
}

// Delete removes the record with id. Deleting an absent id is a no-op.
func (c *Collection[T]) Delete(ctx context.Context, id string) ([]T, error) {
	return c.mutate(ctx, log.OpDelete, id, func(items []T) ([]T, bool) {
		i := slices.IndexFunc(items, func(r T) bool { return r.RecordID() == id })
		if i < 0 {
			return items, false
		}
		return slices.Delete(items, i, i+1), true
	})
}

func (c *Collection[T]) mutate(ctx context.Context, op, id string, fn func([]T) ([]T, bool)) ([]T, error) {
	c.mu.Lock()
	next, changed := fn(c.load(ctx))
	if next == nil {
		next = []T{}
	}
	if !changed {
		c.mu.Unlock()
		return next, nil
	}

	raw, err := json.Marshal(next)
	if err != nil {
		c.mu.Unlock()
		return next, fmt.Errorf("encode %s: %w", c.name, err)
	}
	err = c.store.write(ctx, c.key, c.name, raw)
	c.mu.Unlock()
	if err != nil {
		return next, err
	}

	c.store.logger.DebugContext(ctx, "Collection written",
		log.NewFields().WithOperation(op).WithRecord(c.name, id).ToSlice()...)
	c.store.notify()
	return next, nil
}

// Settings is the config singleton.
type Settings struct {
	mu    sync.Mutex
	store *Store
}

// Get returns the stored config, falling back to core.DefaultConfig. Fields
// missing from the stored value keep their defaults.
func (s *Settings) Get(ctx context.Context) core.AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := core.DefaultConfig()
	ok := s.store.read(ctx, KeyConfig, func(raw []byte) error {
		decoded := core.DefaultConfig()
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return err
		}
		cfg = decoded
		return nil
	})
	if !ok {
		return core.DefaultConfig()
	}
	return cfg
}

// Save replaces the config.
func (s *Settings) Save(ctx context.Context, cfg core.AppConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	s.mu.Lock()
	err = s.store.write(ctx, KeyConfig, "config", raw)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.store.notify()
	return nil
}
