package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kapinzzal02/playgen/internal/services"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDenial writes the admission rejection body with the oracle's reason.
func writeDenial(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusForbidden, map[string]string{
		"error":  "request rejected",
		"reason": reason,
	})
}

// relayUpstream translates an upstream call failure into a response.
//
// A structured [services.APIError] is relayed verbatim, status and body;
// anything else becomes a generic 500.
func (s *Server) relayUpstream(w http.ResponseWriter, err error) {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		s.logger.Error("upstream error", "status", apiErr.StatusCode)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(apiErr.StatusCode)
		w.Write(apiErr.Body)
		return
	}

	s.logger.Error("upstream call failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
