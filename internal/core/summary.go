package core

// MonthlySummary is the per-month rollup shown in the dashboard matrix.
type MonthlySummary struct {
	Month       string `json:"month"`
	TotalEvents Money  `json:"totalEvents"`
	Received    Money  `json:"received"`
	Receivable  Money  `json:"receivable"`
	TotalDebts  Money  `json:"totalDebts"`
	DebtsPaid   Money  `json:"debtsPaid"`
	DebtsOpen   Money  `json:"debtsOpen"`
}

// Stats holds the global rollups plus the monthly matrix.
type Stats struct {
	GrossIncome      Money            `json:"grossIncome"`
	ReceivedIncome   Money            `json:"receivedIncome"`
	ReceivableIncome Money            `json:"receivableIncome"`
	TotalDebt        Money            `json:"totalDebt"`
	PaidDebt         Money            `json:"paidDebt"`
	OpenDebt         Money            `json:"openDebt"`
	MonthlyMatrix    []MonthlySummary `json:"monthlyMatrix"`
}

// eventTotals accumulates the income side. PAID counts in full, PARTIAL counts
// half toward received, PENDING counts in full toward receivable.
type eventTotals struct {
	total, received, receivable Money
}

func (t *eventTotals) add(e FinancialEvent) {
	t.total = t.total.Add(e.TotalValue)
	switch e.Status {
	case StatusPaid:
		t.received = t.received.Add(e.MonthlyValue)
	case StatusPartial:
		t.received = t.received.Add(e.MonthlyValue.Half())
	case StatusPending:
		t.receivable = t.receivable.Add(e.MonthlyValue)
	}
}

// debtTotals accumulates the liability side. Anything not PAID is open,
// PARTIAL included: debts get no half-credit.
type debtTotals struct {
	total, paid, open Money
}

func (t *debtTotals) add(d Debt) {
	t.total = t.total.Add(d.TotalValue)
	if d.Status == StatusPaid {
		t.paid = t.paid.Add(d.MonthlyValue)
	} else {
		t.open = t.open.Add(d.MonthlyValue)
	}
}

// CalculateMonthlySummary buckets events and debts by exact monthReference and
// returns one row per distinct month in chronological order.
func CalculateMonthlySummary(events []FinancialEvent, debts []Debt) []MonthlySummary {
	type bucket struct {
		events eventTotals
		debts  debtTotals
	}
	buckets := make(map[string]*bucket)
	months := make([]string, 0)
	get := func(month string) *bucket {
		b, ok := buckets[month]
		if !ok {
			b = &bucket{}
			buckets[month] = b
			months = append(months, month)
		}
		return b
	}
	for _, e := range events {
		get(e.MonthReference).events.add(e)
	}
	for _, d := range debts {
		get(d.MonthReference).debts.add(d)
	}

	SortMonthReferences(months)

	out := make([]MonthlySummary, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		out = append(out, MonthlySummary{
			Month:       m,
			TotalEvents: b.events.total,
			Received:    b.events.received,
			Receivable:  b.events.receivable,
			TotalDebts:  b.debts.total,
			DebtsPaid:   b.debts.paid,
			DebtsOpen:   b.debts.open,
		})
	}
	return out
}

// ComputeStats derives the dashboard statistics from the full record sets.
func ComputeStats(events []FinancialEvent, debts []Debt) Stats {
	var et eventTotals
	for _, e := range events {
		et.add(e)
	}
	var dt debtTotals
	for _, d := range debts {
		dt.add(d)
	}
	return Stats{
		GrossIncome:      et.total,
		ReceivedIncome:   et.received,
		ReceivableIncome: et.receivable,
		TotalDebt:        dt.total,
		PaidDebt:         dt.paid,
		OpenDebt:         dt.open,
		MonthlyMatrix:    CalculateMonthlySummary(events, debts),
	}
}

// LastMonths returns the trailing n rows of a chronologically sorted summary.
func LastMonths(summary []MonthlySummary, n int) []MonthlySummary {
	if n <= 0 {
		return []MonthlySummary{}
	}
	if len(summary) <= n {
		return summary
	}
	return summary[len(summary)-n:]
}
