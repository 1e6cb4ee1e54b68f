package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethpandaops/parkoor/pkg/auth"
	"github.com/ethpandaops/parkoor/pkg/evidence"
	"github.com/go-chi/chi/v5"
)

// errorResponse is a standard error payload.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as JSON and writes it to w. The body is encoded
// before the status is sent so an encoding failure still yields a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, _ = w.Write(buf.Bytes())
}

// writeError maps err onto the response taxonomy. Anything that is not an
// auth error is treated as a storage failure.
func (s *server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized,
			errorResponse{"authentication required"})
	case errors.Is(err, auth.ErrForbidden):
		writeJSON(w, http.StatusForbidden,
			errorResponse{"insufficient permissions"})
	case errors.Is(err, auth.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest,
			errorResponse{err.Error()})
	default:
		s.log.WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})
	}
}

// handleHealth returns server health status.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleEvidence serves a stored evidence photo.
func (s *server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.evidence.Serve(w, r, name); err != nil {
		if !errors.Is(err, evidence.ErrNotFound) {
			s.log.WithError(err).
				WithField("name", name).
				Warn("Failed to serve evidence")
		}

		writeJSON(w, http.StatusNotFound,
			errorResponse{"file not found"})
	}
}
