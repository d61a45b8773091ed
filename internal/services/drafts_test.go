package services

import (
	"errors"
	"testing"

	"prestes/internal/core"
)

func TestNewEvent(t *testing.T) {
	e, err := NewEvent(EventDraft{
		Name:       " Casamento ",
		Date:       "2024-09-14",
		TotalValue: core.MustParseMoney("3500"),
		Status:     core.StatusPartial,
	}, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID == "" {
		t.Fatal("expected generated id")
	}
	if e.MonthReference != "09/2024" {
		t.Fatalf("monthReference = %s, want 09/2024", e.MonthReference)
	}
	if !e.MonthlyValue.Equal(e.TotalValue) {
		t.Fatalf("monthly value should equal total, got %s", e.MonthlyValue)
	}
	if e.Name != "Casamento" || e.ClientOrigin != "Cliente" || e.Type != "Job" {
		t.Fatalf("unexpected defaults: %+v", e)
	}
	if len(e.History) != 1 || e.History[0].Status != core.StatusPartial || !e.History[0].Date.Equal(fixedNow) {
		t.Fatalf("unexpected initial history %+v", e.History)
	}
}

func TestNewEventKeepsIdentityWhenEditing(t *testing.T) {
	history := []core.StatusEntry{{Date: fixedNow, Status: core.StatusPending}, {Date: fixedNow, Status: core.StatusPaid}}
	e, err := NewEvent(EventDraft{
		ID:         "keep-me",
		Name:       "Ensaio",
		Date:       "2024-01-02",
		TotalValue: core.MustParseMoney("10"),
		Status:     core.StatusPaid,
		History:    history,
	}, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "keep-me" || len(e.History) != 2 {
		t.Fatalf("edit lost identity or history: %+v", e)
	}
}

func TestNewEventRequiredFields(t *testing.T) {
	base := EventDraft{Name: "x", Date: "2024-01-01", TotalValue: core.MustParseMoney("1")}
	tests := []struct {
		name   string
		mutate func(*EventDraft)
		want   error
	}{
		{"name", func(d *EventDraft) { d.Name = "" }, core.ErrEmptyName},
		{"total", func(d *EventDraft) { d.TotalValue = core.Money{} }, core.ErrInvalidAmount},
		{"date", func(d *EventDraft) { d.Date = "" }, core.ErrMissingDate},
		{"bad date", func(d *EventDraft) { d.Date = "tomorrow" }, core.ErrInvalidDate},
		{"status", func(d *EventDraft) { d.Status = "LATE" }, core.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.mutate(&d)
			if _, err := NewEvent(d, fixedNow); !errors.Is(err, tt.want) {
				t.Errorf("NewEvent() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewDebt(t *testing.T) {
	d, err := NewDebt(DebtDraft{
		Description:  "Notebook",
		TotalValue:   core.MustParseMoney("6000"),
		MonthlyValue: core.MustParseMoney("500"),
	}, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID == "" || d.MonthReference != "06/2024" || d.InstallmentsTotal != 1 || d.Status != core.StatusPending {
		t.Fatalf("unexpected defaults %+v", d)
	}

	tests := []struct {
		name  string
		draft DebtDraft
		want  error
	}{
		{"description", DebtDraft{TotalValue: core.MustParseMoney("1")}, core.ErrEmptyDescription},
		{"total", DebtDraft{Description: "x"}, core.ErrInvalidAmount},
		{"installments", DebtDraft{Description: "x", TotalValue: core.MustParseMoney("1"), InstallmentsPaid: 5, InstallmentsTotal: 2}, core.ErrInvalidInstallments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDebt(tt.draft, fixedNow); !errors.Is(err, tt.want) {
				t.Errorf("NewDebt() = %v, want %v", err, tt.want)
			}
		})
	}
}
