package server

import (
	"context"
	"net/http"
	"time"

	"smartmeeting/apperrors"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"version":   Version,
		"module":    moduleName,
	})
}

// handleReady reports whether the store answers within two seconds.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.errors.Handle(w, r, apperrors.NewUnavailableError("database", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
