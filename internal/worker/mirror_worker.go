package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"prestes/internal/amqp"
	"prestes/internal/core"
	"prestes/internal/log"
	"prestes/internal/records"
	"prestes/internal/sheets"
)

// MirrorWorker keeps an external sheet in step with the record store's
// monthly summary.
type MirrorWorker struct {
	store    *records.Store
	writer   sheets.SummaryWriter
	interval time.Duration
	pending  chan struct{}
	logger   *log.Logger

	mu   sync.Mutex
	last []byte // encoded stats of the last successful write
}

func NewMirrorWorker(store *records.Store, writer sheets.SummaryWriter, interval time.Duration) *MirrorWorker {
	return &MirrorWorker{
		store:    store,
		writer:   writer,
		interval: interval,
		pending:  make(chan struct{}, 1),
		logger:   log.ForComponent(log.ComponentWorker),
	}
}

// Mirror writes the current summary unless it equals the last one written.
func (w *MirrorWorker) Mirror(ctx context.Context) error {
	return w.mirror(ctx, false)
}

func (w *MirrorWorker) mirror(ctx context.Context, force bool) error {
	stats := core.ComputeStats(w.store.Events.Get(ctx), w.store.Debts.Get(ctx))
	encoded, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !force && w.last != nil && string(encoded) == string(w.last) {
		w.logger.DebugContext(ctx, "Summary unchanged, skipping mirror")
		return nil
	}
	if err := w.writer.WriteSummary(ctx, stats); err != nil {
		w.store.Metrics().Mirrors.WithLabelValues("error").Inc()
		return fmt.Errorf("write summary: %w", err)
	}
	w.store.Metrics().Mirrors.WithLabelValues("ok").Inc()
	w.last = encoded
	w.logger.InfoContext(ctx, "Summary mirrored",
		log.FieldOperation, log.OpMirror, log.FieldCount, len(stats.MonthlyMatrix))
	return nil
}

// HandleChange is the consumer handler for remote change messages.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg amqp.ChangeMessage) error {
	w.logger.DebugContext(ctx, "Remote change received", log.FieldOrigin, msg.Origin)
	return w.Mirror(ctx)
}

// Attach mirrors after every local change signal from src.
func (w *MirrorWorker) Attach(src amqp.Subscriber) (detach func()) {
	return src.Subscribe(func() {
		select {
		case w.pending <- struct{}{}:
		default:
		}
	})
}

// Run mirrors once, then on every attached signal and on every interval
// tick (which rewrites even an unchanged summary) until ctx ends.
func (w *MirrorWorker) Run(ctx context.Context) error {
	if err := w.mirror(ctx, true); err != nil {
		w.logger.Failure(ctx, "Initial mirror failed", log.OpMirror, err)
	}

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.pending:
			if err := w.Mirror(ctx); err != nil {
				w.logger.Failure(ctx, "Mirror failed", log.OpMirror, err)
			}
		case <-tick:
			if err := w.mirror(ctx, true); err != nil {
				w.logger.Failure(ctx, "Periodic mirror failed", log.OpMirror, err)
			}
		}
	}
}
