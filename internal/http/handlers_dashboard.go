package http

import (
	"net/http"

	"prestes/internal/core"
	"prestes/internal/log"
)

// chartMonths is how many trailing months the dashboard chart shows.
const chartMonths = 6

type dashboardResponse struct {
	Events []core.FinancialEvent `json:"events"`
	Debts  []core.Debt           `json:"debts"`
	Stats  core.Stats            `json:"stats"`
	Chart  []core.MonthlySummary `json:"chart"`
	Config core.AppConfig        `json:"config"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.binder.Snapshot()
	stats := s.binder.Stats()
	NewJSONResponse().Body(dashboardResponse{
		Events: snap.Events,
		Debts:  snap.Debts,
		Stats:  stats,
		Chart:  core.LastMonths(stats.MonthlyMatrix, chartMonths),
		Config: s.store.Config.Get(r.Context()),
	}).Write(w)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.store.Config.Get(r.Context())).Write(w)
}

// handlePutConfig applies the fields present in the body on top of the
// current settings.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.Config.Get(r.Context())
	if err := decodeJSON(w, r, &cfg); err != nil {
		s.badInput(w, err)
		return
	}
	if err := cfg.Validate(); err != nil {
		s.badInput(w, err)
		return
	}
	s.respondMutation(w, r, http.StatusOK, cfg, s.store.Config.Save(r.Context(), cfg))
}

func (s *Server) handleReportYears(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string][]int{"years": s.binder.AvailableYears()}).Write(w)
}

func (s *Server) handleYearReport(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r.PathValue("year"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	report := s.binder.YearReport(year)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Year report served",
		log.FieldYear, year, log.FieldCount, len(report.Events)+len(report.Debts))
	NewJSONResponse().Body(report).Write(w)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ref, err := parseCalendarMonth(r, s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	NewJSONResponse().Body(s.binder.Calendar(ref)).Write(w)
}
