package http

import (
	"errors"
	"io"
	"net/http"

	"prestes/internal/backup"
	"prestes/internal/log"
)

// handleExport downloads everything persisted as a backup file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw, err := backup.Export(s.store.GetAllData(ctx))
	if err != nil {
		log.FromContext(ctx).Failure(ctx, "Backup export failed", log.OpExport, err)
		InternalServerError("export failed").Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.FileName(s.product, s.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// handleImport replaces each collection present in the uploaded backup.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		s.badInput(w, err)
		return
	}
	data, err := backup.ParseImport(raw)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidFile) {
			log.FromContext(ctx).WarnContext(ctx, "Rejected backup import", log.FieldError, err)
			BadRequestError(backup.ErrInvalidFile.Error()).Write(w)
			return
		}
		s.badInput(w, err)
		return
	}

	s.respondMutation(w, r, http.StatusOK, nil, s.store.ImportData(ctx, data))
}

// handleClear removes every collection, leaving the defaults.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.respondMutation(w, r, http.StatusOK, nil, s.store.ClearAll(r.Context()))
}
