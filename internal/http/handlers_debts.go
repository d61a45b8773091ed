package http

import (
	"errors"
	"net/http"

	"prestes/internal/core"
	"prestes/internal/records"
	"prestes/internal/services"
)

func (s *Server) findDebt(id string) (core.Debt, bool) {
	for _, d := range s.binder.Snapshot().Debts {
		if d.ID == id {
			return d, true
		}
	}
	return core.Debt{}, false
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.binder.Snapshot().Debts).Write(w)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badInput(w, err)
		return
	}
	d, err := services.NewDebt(req.draft(""), s.now())
	if err != nil {
		s.badInput(w, err)
		return
	}
	s.respondMutation(w, r, http.StatusCreated, d, s.binder.AddDebt(r.Context(), d))
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.findDebt(id); !ok {
		NotFoundError("debt not found").Write(w)
		return
	}
	var req debtRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badInput(w, err)
		return
	}
	d, err := services.NewDebt(req.draft(id), s.now())
	if err != nil {
		s.badInput(w, err)
		return
	}
	s.respondMutation(w, r, http.StatusOK, d, s.binder.UpdateDebt(r.Context(), d))
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	s.respondMutation(w, r, http.StatusOK, nil, s.binder.DeleteDebt(r.Context(), r.PathValue("id")))
}

// handleToggleDebt flips a debt between PAID and PENDING.
func (s *Server) handleToggleDebt(w http.ResponseWriter, r *http.Request) {
	toggled, err := s.binder.ToggleDebtStatus(r.Context(), r.PathValue("id"))
	if errors.Is(err, records.ErrRecordNotFound) {
		NotFoundError("debt not found").Write(w)
		return
	}
	s.respondMutation(w, r, http.StatusOK, toggled, err)
}
