// Package records persists the finance collections (events, debts and the
// config singleton) as JSON blobs and signals every change.
package records

import (
	"context"
	"errors"
	"fmt"

	"prestes/internal/core"
	"prestes/internal/log"
	"prestes/internal/metrics"
	"prestes/internal/notify"
	"prestes/internal/storage"
)

// Persisted keys.
const (
	KeyEvents = "prestes_events"
	KeyDebts  = "prestes_debts"
	KeyConfig = "prestes_config"
)

// ErrNotDurable marks a write that did not reach durable storage. The store
// did not signal a change for it.
var ErrNotDurable = errors.New("records: write not durable")

// ErrRecordNotFound is returned by Modify when no record has the given id.
var ErrRecordNotFound = errors.New("records: record not found")

// WriteError reports which key failed to persist. It matches ErrNotDurable
// under errors.Is.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("records: write %s not durable: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrNotDurable }

// Data is the full persisted state. On import a nil field means the
// collection is absent and is left untouched.
type Data struct {
	Events []core.FinancialEvent `json:"events"`
	Debts  []core.Debt           `json:"debts"`
	Config *core.AppConfig       `json:"config"`
}

// Store is the record store. Collections share one notifier, so any write
// produces the same payload-free signal.
type Store struct {
	Events *Collection[core.FinancialEvent]
	Debts  *Collection[core.Debt]
	Config *Settings

	blobs    storage.Blobs
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	logger   *log.Logger
}

type Option func(*Store)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithNotifier(n *notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func New(blobs storage.Blobs, opts ...Option) *Store {
	s := &Store{blobs: blobs}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.New()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.logger == nil {
		s.logger = log.ForComponent(log.ComponentRecords)
	}
	s.Events = newCollection[core.FinancialEvent](s, KeyEvents, "events")
	s.Debts = newCollection[core.Debt](s, KeyDebts, "debts")
	s.Config = &Settings{store: s}
	return s
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	return s.notifier.Subscribe(fn)
}

// Metrics exposes the collectors the store reports to.
func (s *Store) Metrics() *metrics.Metrics {
	return s.metrics
}

func (s *Store) notify() {
	s.metrics.Notifications.Inc()
	s.notifier.Notify()
}

// GetAllData returns a snapshot of everything persisted.
func (s *Store) GetAllData(ctx context.Context) Data {
	cfg := s.Config.Get(ctx)
	return Data{
		Events: s.Events.Get(ctx),
		Debts:  s.Debts.Get(ctx),
		Config: &cfg,
	}
}

// ImportData overwrites each collection present in data. Each written
// collection signals once. Failed writes are joined into the returned error;
// the other collections are still written.
func (s *Store) ImportData(ctx context.Context, data Data) error {
	var errs []error
	if data.Events != nil {
		errs = append(errs, s.Events.Save(ctx, data.Events))
	}
	if data.Debts != nil {
		errs = append(errs, s.Debts.Save(ctx, data.Debts))
	}
	if data.Config != nil {
		errs = append(errs, s.Config.Save(ctx, *data.Config))
	}
	err := errors.Join(errs...)
	if err == nil {
		s.logger.InfoContext(ctx, "Data imported", log.FieldOperation, log.OpImport,
			"events", data.Events != nil, "debts", data.Debts != nil, "config", data.Config != nil)
	}
	return err
}

// ClearAll removes all three keys and signals once.
func (s *Store) ClearAll(ctx context.Context) error {
	s.Events.mu.Lock()
	s.Debts.mu.Lock()
	s.Config.mu.Lock()
	err := s.blobs.Delete(ctx, KeyEvents, KeyDebts, KeyConfig)
	s.Config.mu.Unlock()
	s.Debts.mu.Unlock()
	s.Events.mu.Unlock()

	if err != nil {
		s.metrics.WriteFailures.WithLabelValues("all").Inc()
		s.logger.Failure(ctx, "Clear failed", log.OpClear, err)
		return &WriteError{Key: "*", Err: err}
	}
	s.logger.InfoContext(ctx, "All data cleared", log.FieldOperation, log.OpClear)
	s.notify()
	return nil
}

// read loads a key. Missing keys, read failures and undecodable blobs all
// report ok=false; only read failures and decode failures are logged.
func (s *Store) read(ctx context.Context, key string, decode func([]byte) error) bool {
	raw, err := s.blobs.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Read failed, using default",
			log.FieldKey, key, log.FieldOperation, log.OpRead, log.FieldError, err)
		return false
	}
	if err := decode(raw); err != nil {
		s.logger.DebugContext(ctx, "Stored value not decodable, using default",
			log.FieldKey, key, log.FieldError, err)
		return false
	}
	return true
}

// write persists raw under key. It never signals; callers do that after
// releasing their lock.
func (s *Store) write(ctx context.Context, key, collection string, raw []byte) error {
	s.metrics.Writes.WithLabelValues(collection).Inc()
	if err := s.blobs.Put(ctx, key, raw); err != nil {
		s.metrics.WriteFailures.WithLabelValues(collection).Inc()
		s.logger.WarnContext(ctx, "Write not durable",
			log.FieldKey, key, log.FieldCollection, collection, log.FieldError, err)
		return &WriteError{Key: key, Err: err}
	}
	return nil
}
