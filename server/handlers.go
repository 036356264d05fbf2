package server

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "pst",
		"scenarios": s.registry.Len(),
	})
}

// writeJSON writes a JSON response. The body is encoded before the status
// is sent, so that an encoding failure is a 500, not a truncated success.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
		b.Reset()
		status = http.StatusInternalServerError
		json.NewEncoder(&b).Encode(map[string]string{
			"error": "cannot encode the response",
			"kind":  errInternal,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b.Bytes())
}

// writeError writes an error response. kind classifies the error for API
// clients.
func (s *Server) writeError(w http.ResponseWriter, status int, kind, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
		"kind":  kind,
	})
}
