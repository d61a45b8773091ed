package core

import (
	"slices"
	"time"
)

// YearReport is the data contract behind the yearly report.
type YearReport struct {
	Year          int              `json:"year"`
	Events        []FinancialEvent `json:"events"`
	Debts         []Debt           `json:"debts"`
	TotalIncome   Money            `json:"totalIncome"`
	TotalReceived Money            `json:"totalReceived"`
	TotalDebt     Money            `json:"totalDebt"`
	DebtPaid      Money            `json:"debtPaid"`
	Balance       Money            `json:"balance"`
}

// BuildYearReport selects the records whose month reference falls in year.
// The report counts only PAID events as received; it applies no half-credit.
func BuildYearReport(events []FinancialEvent, debts []Debt, year int) YearReport {
	r := YearReport{
		Year:   year,
		Events: []FinancialEvent{},
		Debts:  []Debt{},
	}
	for _, e := range events {
		if !inYear(e.MonthReference, year) {
			continue
		}
		r.Events = append(r.Events, e)
		r.TotalIncome = r.TotalIncome.Add(e.TotalValue)
		if e.Status == StatusPaid {
			r.TotalReceived = r.TotalReceived.Add(e.MonthlyValue)
		}
	}
	for _, d := range debts {
		if !inYear(d.MonthReference, year) {
			continue
		}
		r.Debts = append(r.Debts, d)
		r.TotalDebt = r.TotalDebt.Add(d.TotalValue)
		if d.Status == StatusPaid {
			r.DebtPaid = r.DebtPaid.Add(d.MonthlyValue)
		}
	}
	r.Balance = r.TotalReceived.Sub(r.DebtPaid)
	return r
}

// AvailableYears lists the years referenced by any record, ascending. The
// current year is always present.
func AvailableYears(events []FinancialEvent, debts []Debt, now time.Time) []int {
	seen := map[int]struct{}{now.Year(): {}}
	for _, e := range events {
		if m, err := ParseMonthRef(e.MonthReference); err == nil {
			seen[m.Year] = struct{}{}
		}
	}
	for _, d := range debts {
		if m, err := ParseMonthRef(d.MonthReference); err == nil {
			seen[m.Year] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

func inYear(ref string, year int) bool {
	m, err := ParseMonthRef(ref)
	return err == nil && m.Year == year
}
