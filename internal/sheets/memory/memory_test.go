package memory

import (
	"context"
	"errors"
	"testing"

	"prestes/internal/core"
)

func TestStoreKeepsLastWrite(t *testing.T) {
	s := New()
	stats := core.Stats{GrossIncome: core.MustParseMoney("10")}
	if err := s.WriteSummary(context.Background(), stats); err != nil {
		t.Fatal(err)
	}
	last, n := s.Last()
	if n != 1 || !last.GrossIncome.Equal(stats.GrossIncome) {
		t.Fatalf("unexpected last write %+v (%d writes)", last, n)
	}

	boom := errors.New("boom")
	s.FailWith(boom)
	if err := s.WriteSummary(context.Background(), core.Stats{}); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if _, n := s.Last(); n != 1 {
		t.Fatalf("failed write must not count, got %d", n)
	}
}
