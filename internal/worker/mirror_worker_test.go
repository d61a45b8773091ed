package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"prestes/internal/amqp"
	"prestes/internal/core"
	"prestes/internal/records"
	sheetsmem "prestes/internal/sheets/memory"
	"prestes/internal/storage/memory"
)

func paidEvent(id, total string) core.FinancialEvent {
	return core.FinancialEvent{
		ID: id, Name: "job", MonthReference: "06/2024", Date: "2024-06-01",
		TotalValue: core.MustParseMoney(total), MonthlyValue: core.MustParseMoney(total),
		Status: core.StatusPaid,
	}
}

func TestMirrorSkipsUnchangedSummary(t *testing.T) {
	ctx := context.Background()
	store := records.New(memory.New())
	out := sheetsmem.New()
	w := NewMirrorWorker(store, out, 0)

	if err := w.Mirror(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.Mirror(ctx); err != nil {
		t.Fatal(err)
	}
	if _, n := out.Last(); n != 1 {
		t.Fatalf("expected a single write for an unchanged summary, got %d", n)
	}

	if _, err := store.Events.Add(ctx, paidEvent("A", "250")); err != nil {
		t.Fatal(err)
	}
	if err := w.HandleChange(ctx, amqp.ChangeMessage{Origin: "other"}); err != nil {
		t.Fatal(err)
	}
	last, n := out.Last()
	if n != 2 || !last.ReceivedIncome.Equal(core.MustParseMoney("250")) {
		t.Fatalf("expected updated summary, got %+v after %d writes", last, n)
	}
}

func TestMirrorFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	store := records.New(memory.New())
	out := sheetsmem.New()
	w := NewMirrorWorker(store, out, 0)

	out.FailWith(errors.New("quota"))
	if err := w.Mirror(ctx); err == nil {
		t.Fatal("expected error")
	}
	out.FailWith(nil)
	if err := w.Mirror(ctx); err != nil {
		t.Fatal(err)
	}
	if _, n := out.Last(); n != 1 {
		t.Fatalf("failed write must not be remembered as written, got %d writes", n)
	}
}

func TestRunMirrorsLocalChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := records.New(memory.New())
	out := sheetsmem.New()
	w := NewMirrorWorker(store, out, 0)
	w.Attach(store)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitWrites(t, out, 1)
	if _, err := store.Events.Add(context.Background(), paidEvent("A", "10")); err != nil {
		t.Fatal(err)
	}
	waitWrites(t, out, 2)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func waitWrites(t *testing.T, out *sheetsmem.Store, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, n := out.Last(); n >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	_, n := out.Last()
	t.Fatalf("expected %d writes, got %d", want, n)
}
