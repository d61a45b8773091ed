package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"prestes/internal/core"
	"prestes/internal/services"
)

const (
	maxBodyBytes   = 1 << 20
	maxBackupBytes = 10 << 20
)

var (
	errBadYear  = errors.New("invalid year")
	errBadMonth = errors.New("invalid month")
)

type eventRequest struct {
	Name         string             `json:"name"`
	ClientOrigin string             `json:"clientOrigin"`
	Type         string             `json:"type"`
	Date         string             `json:"date"`
	Location     string             `json:"location"`
	Time         string             `json:"time"`
	Description  string             `json:"description"`
	TotalValue   core.Money         `json:"totalValue"`
	Status       core.PaymentStatus `json:"status"`
}

func (req eventRequest) draft(id string, history []core.StatusEntry) services.EventDraft {
	return services.EventDraft{
		ID:           id,
		Name:         sanitizeInput(req.Name),
		ClientOrigin: sanitizeInput(req.ClientOrigin),
		Type:         sanitizeInput(req.Type),
		Date:         req.Date,
		Location:     sanitizeInput(req.Location),
		Time:         req.Time,
		Description:  sanitizeInput(req.Description),
		TotalValue:   req.TotalValue,
		Status:       req.Status,
		History:      history,
	}
}

type debtRequest struct {
	Description       string             `json:"description"`
	Creditor          string             `json:"creditor"`
	Type              string             `json:"type"`
	MonthReference    string             `json:"monthReference"`
	TotalValue        core.Money         `json:"totalValue"`
	MonthlyValue      core.Money         `json:"monthlyValue"`
	InstallmentsPaid  int                `json:"installmentsPaid"`
	InstallmentsTotal int                `json:"installmentsTotal"`
	Status            core.PaymentStatus `json:"status"`
}

func (req debtRequest) draft(id string) services.DebtDraft {
	return services.DebtDraft{
		ID:                id,
		Description:       sanitizeInput(req.Description),
		Creditor:          sanitizeInput(req.Creditor),
		Type:              sanitizeInput(req.Type),
		MonthReference:    req.MonthReference,
		TotalValue:        req.TotalValue,
		MonthlyValue:      req.MonthlyValue,
		InstallmentsPaid:  req.InstallmentsPaid,
		InstallmentsTotal: req.InstallmentsTotal,
		Status:            req.Status,
	}
}

type statusRequest struct {
	Status core.PaymentStatus `json:"status"`
}

// decodeJSON reads a single JSON value of at most maxBodyBytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// parseYear accepts a four-digit year.
func parseYear(s string) (int, error) {
	if len(s) != 4 {
		return 0, errBadYear
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1000 {
		return 0, errBadYear
	}
	return year, nil
}

// parseCalendarMonth reads the {year}/{month} path values, defaulting to the
// month of now when both are absent.
func parseCalendarMonth(r *http.Request, now time.Time) (core.MonthRef, error) {
	y, m := r.PathValue("year"), r.PathValue("month")
	if y == "" && m == "" {
		return core.MonthRef{Year: now.Year(), Month: int(now.Month())}, nil
	}
	year, err := parseYear(y)
	if err != nil {
		return core.MonthRef{}, err
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return core.MonthRef{}, errBadMonth
	}
	return core.MonthRef{Year: year, Month: month}, nil
}

// sanitizeInput removes control characters other than tab and newlines.
func sanitizeInput(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
