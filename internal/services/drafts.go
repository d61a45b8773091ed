package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"prestes/internal/core"
)

// EventDraft is what a user fills in to create or edit an event.
type EventDraft struct {
	ID           string // empty for a new event
	Name         string
	ClientOrigin string
	Type         string
	Date         string // YYYY-MM-DD
	Location     string
	Time         string
	Description  string
	TotalValue   core.Money
	Status       core.PaymentStatus
	History      []core.StatusEntry // kept as-is when editing
}

// DebtDraft is what a user fills in to create or edit a debt.
type DebtDraft struct {
	ID                string
	Description       string
	Creditor          string
	Type              string
	MonthReference    string // defaults to the current month
	TotalValue        core.Money
	MonthlyValue      core.Money
	InstallmentsPaid  int
	InstallmentsTotal int
	Status            core.PaymentStatus
}

// NewEvent turns a draft into a record. Name, a positive total and a date
// are required. The month reference is derived from the date, the monthly
// value equals the total, and a new event starts its history with its
// initial status.
func NewEvent(d EventDraft, now time.Time) (core.FinancialEvent, error) {
	if strings.TrimSpace(d.Name) == "" {
		return core.FinancialEvent{}, core.ErrEmptyName
	}
	if !d.TotalValue.IsPositive() {
		return core.FinancialEvent{}, core.ErrInvalidAmount
	}
	date, err := core.ParseDate(d.Date)
	if err != nil {
		return core.FinancialEvent{}, err
	}

	status := d.Status
	if status == "" {
		status = core.StatusPending
	}
	e := core.FinancialEvent{
		ID:             d.ID,
		Name:           strings.TrimSpace(d.Name),
		ClientOrigin:   orDefault(d.ClientOrigin, "Cliente"),
		Type:           orDefault(d.Type, "Job"),
		MonthReference: core.MonthReference(date.Time),
		Date:           date.String(),
		Location:       d.Location,
		Time:           d.Time,
		Description:    d.Description,
		TotalValue:     d.TotalValue,
		MonthlyValue:   d.TotalValue,
		Status:         status,
		History:        d.History,
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if len(e.History) == 0 {
		e.History = []core.StatusEntry{{Date: now.UTC(), Status: status}}
	}
	return e, e.Validate()
}

// NewDebt turns a draft into a record. Description and a positive total are
// required; the installment counts must be consistent.
func NewDebt(d DebtDraft, now time.Time) (core.Debt, error) {
	if strings.TrimSpace(d.Description) == "" {
		return core.Debt{}, core.ErrEmptyDescription
	}
	if !d.TotalValue.IsPositive() {
		return core.Debt{}, core.ErrInvalidAmount
	}

	debt := core.Debt{
		ID:                d.ID,
		Description:       strings.TrimSpace(d.Description),
		Creditor:          d.Creditor,
		Type:              d.Type,
		MonthReference:    orDefault(d.MonthReference, core.MonthReference(now)),
		TotalValue:        d.TotalValue,
		MonthlyValue:      d.MonthlyValue,
		InstallmentsPaid:  d.InstallmentsPaid,
		InstallmentsTotal: d.InstallmentsTotal,
		Status:            d.Status,
	}
	if debt.ID == "" {
		debt.ID = uuid.NewString()
	}
	if debt.InstallmentsTotal == 0 {
		debt.InstallmentsTotal = 1
	}
	if debt.Status == "" {
		debt.Status = core.StatusPending
	}
	return debt, debt.Validate()
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
