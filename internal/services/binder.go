package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"prestes/internal/cache"
	"prestes/internal/core"
	"prestes/internal/log"
	"prestes/internal/records"
)

// Snapshot is the binder's view of the persisted collections. A snapshot is
// never modified after it is published; every change produces a new one.
type Snapshot struct {
	Version uint64
	Events  []core.FinancialEvent
	Debts   []core.Debt
}

// Binder keeps a snapshot of the record store in sync with its change
// signal and derives dashboard statistics from it.
type Binder struct {
	store   *records.Store
	now     func() time.Time
	logger  *log.Logger
	reports cache.Cache[core.YearReport]

	// reloadMu orders snapshot sources: a read and its publish happen
	// together, so an older read can never be published over a newer one.
	reloadMu sync.Mutex
	// afterRead runs between a reload's read and its publish. Tests only.
	afterRead func()

	mu          sync.Mutex
	snap        *Snapshot
	statsOf     *Snapshot
	stats       core.Stats
	unsubscribe func()
}

type BinderOption func(*Binder)

// WithClock replaces time.Now for history timestamps and the current year.
func WithClock(now func() time.Time) BinderOption {
	return func(b *Binder) { b.now = now }
}

// WithReportCache sets the cache used for yearly reports.
func WithReportCache(c cache.Cache[core.YearReport]) BinderOption {
	return func(b *Binder) { b.reports = c }
}

func NewBinder(store *records.Store, opts ...BinderOption) *Binder {
	b := &Binder{
		store:  store,
		now:    time.Now,
		logger: log.ForComponent(log.ComponentBinder),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.reports == nil {
		b.reports = cache.NewLRU[core.YearReport](16, 10*time.Minute)
	}
	return b
}

// Mount loads the collections and starts following the store's change
// signal. Mounting a mounted binder only reloads.
func (b *Binder) Mount(ctx context.Context) {
	b.Reload(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unsubscribe != nil {
		return
	}
	listenCtx := context.WithoutCancel(ctx)
	b.unsubscribe = b.store.Subscribe(func() { b.Reload(listenCtx) })
	b.logger.DebugContext(ctx, "Binder mounted")
}

// Unmount stops following the store. The last snapshot stays readable.
func (b *Binder) Unmount() {
	b.mu.Lock()
	unsub := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Loaded reports whether a snapshot has been read from the store.
func (b *Binder) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap != nil
}

// Reload replaces the snapshot with the store's current contents.
func (b *Binder) Reload(ctx context.Context) {
	b.reloadMu.Lock()
	events := b.store.Events.Get(ctx)
	debts := b.store.Debts.Get(ctx)
	if b.afterRead != nil {
		b.afterRead()
	}
	b.publish(events, debts)
	b.reloadMu.Unlock()

	b.store.Metrics().Reloads.Inc()
	b.logger.DebugContext(ctx, "Snapshot reloaded",
		log.FieldOperation, log.OpReload, "events", len(events), "debts", len(debts))
}

func (b *Binder) publish(events []core.FinancialEvent, debts []core.Debt) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var version uint64 = 1
	if b.snap != nil {
		version = b.snap.Version + 1
	}
	b.snap = &Snapshot{Version: version, Events: events, Debts: debts}
}

// Snapshot returns the current snapshot. Before the first load it is empty.
func (b *Binder) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snap == nil {
		return Snapshot{Events: []core.FinancialEvent{}, Debts: []core.Debt{}}
	}
	return *b.snap
}

// Stats returns the statistics for the current snapshot, computing them at
// most once per snapshot.
func (b *Binder) Stats() core.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snap == nil {
		return core.ComputeStats(nil, nil)
	}
	if b.statsOf != b.snap {
		b.stats = core.ComputeStats(b.snap.Events, b.snap.Debts)
		b.statsOf = b.snap
	}
	return b.stats
}

// YearReport builds the report for year from the current snapshot.
func (b *Binder) YearReport(year int) core.YearReport {
	snap := b.Snapshot()
	key := fmt.Sprintf("%d:%d", snap.Version, year)
	if r, ok := b.reports.Get(key); ok {
		return r
	}
	r := core.BuildYearReport(snap.Events, snap.Debts, year)
	b.reports.Set(key, r)
	return r
}

// AvailableYears lists the report years for the current snapshot.
func (b *Binder) AvailableYears() []int {
	snap := b.Snapshot()
	return core.AvailableYears(snap.Events, snap.Debts, b.now())
}

func (b *Binder) AddEvent(ctx context.Context, e core.FinancialEvent) error {
	attempted, err := b.store.Events.Add(ctx, e)
	return b.settleEvents(attempted, err)
}

func (b *Binder) UpdateEvent(ctx context.Context, e core.FinancialEvent) error {
	attempted, err := b.store.Events.Update(ctx, e)
	return b.settleEvents(attempted, err)
}

func (b *Binder) DeleteEvent(ctx context.Context, id string) error {
	attempted, err := b.store.Events.Delete(ctx, id)
	return b.settleEvents(attempted, err)
}

// UpdateEventStatus sets a new status on the stored event with id and
// appends the change to its history. It returns records.ErrRecordNotFound
// when no event has that id.
func (b *Binder) UpdateEventStatus(ctx context.Context, id string, status core.PaymentStatus) (core.FinancialEvent, error) {
	at := b.now().UTC()
	updated, attempted, err := b.store.Events.Modify(ctx, id, func(e core.FinancialEvent) core.FinancialEvent {
		return e.WithStatus(status, at)
	})
	return updated, b.settleEvents(attempted, err)
}

func (b *Binder) AddDebt(ctx context.Context, d core.Debt) error {
	attempted, err := b.store.Debts.Add(ctx, d)
	return b.settleDebts(attempted, err)
}

func (b *Binder) UpdateDebt(ctx context.Context, d core.Debt) error {
	attempted, err := b.store.Debts.Update(ctx, d)
	return b.settleDebts(attempted, err)
}

func (b *Binder) DeleteDebt(ctx context.Context, id string) error {
	attempted, err := b.store.Debts.Delete(ctx, id)
	return b.settleDebts(attempted, err)
}

// ToggleDebtStatus flips the stored debt with id from PAID to PENDING and
// anything else to PAID.
func (b *Binder) ToggleDebtStatus(ctx context.Context, id string) (core.Debt, error) {
	updated, attempted, err := b.store.Debts.Modify(ctx, id, core.Debt.Toggled)
	return updated, b.settleDebts(attempted, err)
}

// settleEvents keeps the session consistent with what the user asked for
// when the store could not persist it: the attempted collection becomes the
// snapshot until the next reload.
func (b *Binder) settleEvents(attempted []core.FinancialEvent, err error) error {
	if errors.Is(err, records.ErrNotDurable) {
		b.reloadMu.Lock()
		b.publish(attempted, b.Snapshot().Debts)
		b.reloadMu.Unlock()
	}
	return err
}

func (b *Binder) settleDebts(attempted []core.Debt, err error) error {
	if errors.Is(err, records.ErrNotDurable) {
		b.reloadMu.Lock()
		b.publish(b.Snapshot().Events, attempted)
		b.reloadMu.Unlock()
	}
	return err
}
