package core

import (
	"slices"
	"testing"
	"time"
)

func TestBuildYearReport(t *testing.T) {
	events := []FinancialEvent{
		ev("01/2024", "1000", "1000", StatusPaid),
		ev("06/2024", "800", "800", StatusPartial),
		ev("12/2023", "999", "999", StatusPaid),
		ev("bad", "1", "1", StatusPaid),
	}
	debts := []Debt{
		dbt("03/2024", "1200", "100", StatusPaid),
		dbt("04/2024", "600", "50", StatusPending),
		dbt("01/2025", "10", "10", StatusPaid),
	}

	r := BuildYearReport(events, debts, 2024)

	if len(r.Events) != 2 || len(r.Debts) != 2 {
		t.Fatalf("expected 2 events and 2 debts, got %d and %d", len(r.Events), len(r.Debts))
	}
	checks := []struct {
		name string
		got  Money
		want string
	}{
		{"totalIncome", r.TotalIncome, "1800"},
		// PARTIAL gets no half-credit in the yearly report.
		{"totalReceived", r.TotalReceived, "1000"},
		{"totalDebt", r.TotalDebt, "1800"},
		{"debtPaid", r.DebtPaid, "100"},
		{"balance", r.Balance, "900"},
	}
	for _, c := range checks {
		if !c.got.Equal(MustParseMoney(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestBuildYearReport_EmptyYear(t *testing.T) {
	r := BuildYearReport(nil, nil, 2030)
	if r.Events == nil || r.Debts == nil {
		t.Fatal("expected non-nil empty slices")
	}
	if !r.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", r.Balance)
	}
}

func TestBuildYearReport_NegativeBalance(t *testing.T) {
	r := BuildYearReport(nil, []Debt{dbt("02/2024", "300", "300", StatusPaid)}, 2024)
	if !r.Balance.IsNegative() {
		t.Fatalf("expected negative balance, got %s", r.Balance)
	}
}

func TestAvailableYears(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		events []FinancialEvent
		debts  []Debt
		want   []int
	}{
		{"no records", nil, nil, []int{2026}},
		{
			"mixed",
			[]FinancialEvent{ev("05/2024", "1", "1", StatusPaid), ev("nope", "1", "1", StatusPaid)},
			[]Debt{dbt("01/2022", "1", "1", StatusPaid), dbt("07/2024", "1", "1", StatusPaid)},
			[]int{2022, 2024, 2026},
		},
		{
			"current year present once",
			[]FinancialEvent{ev("01/2026", "1", "1", StatusPaid)},
			nil,
			[]int{2026},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailableYears(tt.events, tt.debts, now)
			if !slices.Equal(got, tt.want) {
				t.Errorf("AvailableYears() = %v, want %v", got, tt.want)
			}
		})
	}
}
