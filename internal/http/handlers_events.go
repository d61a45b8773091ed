package http

import (
	"errors"
	"net/http"

	"prestes/internal/core"
	"prestes/internal/log"
	"prestes/internal/records"
	"prestes/internal/services"
)

func (s *Server) findEvent(id string) (core.FinancialEvent, bool) {
	for _, e := range s.binder.Snapshot().Events {
		if e.ID == id {
			return e, true
		}
	}
	return core.FinancialEvent{}, false
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.binder.Snapshot().Events).Write(w)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badInput(w, err)
		return
	}
	e, err := services.NewEvent(req.draft("", nil), s.now())
	if err != nil {
		s.badInput(w, err)
		return
	}

	err = s.binder.AddEvent(r.Context(), e)
	if err == nil {
		log.FromContext(r.Context()).InfoContext(r.Context(), "Event created",
			log.FieldRecordID, e.ID, log.FieldMonth, e.MonthReference)
	}
	s.respondMutation(w, r, http.StatusCreated, e, err)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, ok := s.findEvent(id)
	if !ok {
		NotFoundError("event not found").Write(w)
		return
	}
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badInput(w, err)
		return
	}
	e, err := services.NewEvent(req.draft(id, existing.History), s.now())
	if err != nil {
		s.badInput(w, err)
		return
	}
	s.respondMutation(w, r, http.StatusOK, e, s.binder.UpdateEvent(r.Context(), e))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	s.respondMutation(w, r, http.StatusOK, nil, s.binder.DeleteEvent(r.Context(), r.PathValue("id")))
}

// handleEventStatus changes an event's status and appends it to the history.
func (s *Server) handleEventStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badInput(w, err)
		return
	}
	if !req.Status.Valid() {
		s.badInput(w, core.ErrInvalidStatus)
		return
	}

	updated, err := s.binder.UpdateEventStatus(r.Context(), r.PathValue("id"), req.Status)
	if errors.Is(err, records.ErrRecordNotFound) {
		NotFoundError("event not found").Write(w)
		return
	}
	s.respondMutation(w, r, http.StatusOK, updated, err)
}
