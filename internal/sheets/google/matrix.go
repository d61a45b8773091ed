package google

import "prestes/internal/core"

// lastColumn is the column of the rightmost header.
const lastColumn = "G"

var summaryHeader = []any{"Mês", "Eventos", "Recebido", "A receber", "Dívidas", "Dívidas pagas", "Dívidas em aberto"}

// summaryMatrix lays stats out as a header row, one row per month in
// chronological order, and a closing totals row. Amounts are written as
// numbers so the sheet can format them.
func summaryMatrix(stats core.Stats) [][]any {
	rows := make([][]any, 0, len(stats.MonthlyMatrix)+2)
	rows = append(rows, summaryHeader)

	for _, m := range stats.MonthlyMatrix {
		rows = append(rows, []any{
			m.Month,
			m.TotalEvents.Float64(),
			m.Received.Float64(),
			m.Receivable.Float64(),
			m.TotalDebts.Float64(),
			m.DebtsPaid.Float64(),
			m.DebtsOpen.Float64(),
		})
	}

	// Global totals come from Stats so the row matches the dashboard cards.
	rows = append(rows, []any{
		"Total",
		stats.GrossIncome.Float64(),
		stats.ReceivedIncome.Float64(),
		stats.ReceivableIncome.Float64(),
		stats.TotalDebt.Float64(),
		stats.PaidDebt.Float64(),
		stats.OpenDebt.Float64(),
	})
	return rows
}
