package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending PaymentStatus = "PENDING"
	StatusPaid    PaymentStatus = "PAID"
	StatusPartial PaymentStatus = "PARTIAL"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type (
	PaymentStatus string

	Theme string

	Date struct {
		time.Time
	}

	// StatusEntry is one element of an event's append-only status history.
	StatusEntry struct {
		Date   time.Time     `json:"date"`
		Status PaymentStatus `json:"status"`
		Note   string        `json:"note,omitempty"`
	}

	// FinancialEvent is a billable job.
	FinancialEvent struct {
		ID             string        `json:"id"`
		Name           string        `json:"name"`
		ClientOrigin   string        `json:"clientOrigin"`
		Type           string        `json:"type"`
		MonthReference string        `json:"monthReference"` // MM/YYYY
		Date           string        `json:"date,omitempty"` // YYYY-MM-DD
		Location       string        `json:"location,omitempty"`
		Time           string        `json:"time,omitempty"`
		Description    string        `json:"description,omitempty"`
		TotalValue     Money         `json:"totalValue"`
		MonthlyValue   Money         `json:"monthlyValue"`
		Status         PaymentStatus `json:"status"`
		History        []StatusEntry `json:"history"`
	}

	Debt struct {
		ID                string        `json:"id"`
		Description       string        `json:"description"`
		Creditor          string        `json:"creditor"`
		Type              string        `json:"type"`
		MonthReference    string        `json:"monthReference"`
		TotalValue        Money         `json:"totalValue"`
		MonthlyValue      Money         `json:"monthlyValue"`
		InstallmentsPaid  int           `json:"installmentsPaid"`
		InstallmentsTotal int           `json:"installmentsTotal"`
		Status            PaymentStatus `json:"status"`
	}

	AppConfig struct {
		Theme              Theme  `json:"theme"`
		MonthlyBudgetLimit Money  `json:"monthlyBudgetLimit"`
		UserName           string `json:"userName"`
	}
)

var (
	ErrTooLong             = errors.New("text too long (max 200 characters)")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrMissingDate         = errors.New("missing date")
	ErrEmptyName           = errors.New("empty name")
	ErrEmptyDescription    = errors.New("empty description")
	ErrInvalidStatus       = errors.New("invalid payment status")
	ErrInvalidMonthRef     = errors.New("invalid month reference")
	ErrInvalidInstallments = errors.New("invalid installments")
	ErrInvalidTheme        = errors.New("invalid theme")
)

var validationErrors = []error{
	ErrTooLong, ErrInvalidMonth, ErrInvalidAmount, ErrInvalidDate, ErrMissingDate,
	ErrEmptyName, ErrEmptyDescription, ErrInvalidStatus, ErrInvalidMonthRef,
	ErrInvalidInstallments, ErrInvalidTheme,
}

// IsValidationError reports whether err comes from checking user input.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// DefaultConfig is returned whenever no valid config has been persisted.
func DefaultConfig() AppConfig {
	return AppConfig{
		Theme:              ThemeLight,
		MonthlyBudgetLimit: MoneyFromCents(500000),
		UserName:           "Prestes",
	}
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusPartial:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) String() string { return string(s) }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD form. A full RFC3339 timestamp is
// accepted as well and truncated to its calendar day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingDate
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// RecordID identifies the event inside its collection.
func (e FinancialEvent) RecordID() string { return e.ID }

// RecordID identifies the debt inside its collection.
func (d Debt) RecordID() string { return d.ID }

// WithStatus returns a copy of e with status replaced and a history entry
// appended. The receiver's history slice is never written to.
func (e FinancialEvent) WithStatus(status PaymentStatus, at time.Time) FinancialEvent {
	history := make([]StatusEntry, len(e.History), len(e.History)+1)
	copy(history, e.History)
	e.History = append(history, StatusEntry{Date: at, Status: status})
	e.Status = status
	return e
}

// Toggled flips a debt between PAID and PENDING. A PARTIAL debt becomes PAID.
func (d Debt) Toggled() Debt {
	if d.Status == StatusPaid {
		d.Status = StatusPending
	} else {
		d.Status = StatusPaid
	}
	return d
}

// Validate checks the fields a user must fill in before an event is saved.
func (e FinancialEvent) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return ErrTooLong
	}
	if !e.TotalValue.IsPositive() {
		return ErrInvalidAmount
	}
	if e.MonthlyValue.IsNegative() {
		return ErrInvalidAmount
	}
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if _, err := ParseMonthRef(e.MonthReference); err != nil {
		return err
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	if len(d.Description) > 200 {
		return ErrTooLong
	}
	if !d.TotalValue.IsPositive() {
		return ErrInvalidAmount
	}
	if d.MonthlyValue.IsNegative() {
		return ErrInvalidAmount
	}
	if d.InstallmentsTotal < 1 || d.InstallmentsPaid < 0 || d.InstallmentsPaid > d.InstallmentsTotal {
		return ErrInvalidInstallments
	}
	if _, err := ParseMonthRef(d.MonthReference); err != nil {
		return err
	}
	if !d.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Equal compares configs by value. Money holds a pointer, so == is not
// meaningful.
func (c AppConfig) Equal(o AppConfig) bool {
	return c.Theme == o.Theme && c.UserName == o.UserName &&
		c.MonthlyBudgetLimit.Equal(o.MonthlyBudgetLimit)
}

func (c AppConfig) Validate() error {
	if c.Theme != ThemeLight && c.Theme != ThemeDark {
		return ErrInvalidTheme
	}
	if c.MonthlyBudgetLimit.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
