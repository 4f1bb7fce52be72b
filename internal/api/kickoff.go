package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/answerlab/evald/internal/model"
)

const kickoffMessage = "evaluation workflow started"

// kickoffRequest is the JSON body for POST /kickoff. Inputs is stored and
// forwarded verbatim; only its presence and JSON-object shape are validated.
type kickoffRequest struct {
	Inputs json.RawMessage `json:"inputs"`
}

// kickoffResponse is the JSON response for POST /kickoff.
type kickoffResponse struct {
	KickoffID string `json:"kickoff_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func (s *Server) handleKickoff(w http.ResponseWriter, r *http.Request) {
	var req kickoffRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Validation failures must reject before any job record is created.
	if !isJSONObject(req.Inputs) {
		s.writeError(w, http.StatusBadRequest, "inputs must be a JSON object")
		return
	}

	id := s.runner.Submit(req.Inputs)

	s.writeJSON(w, http.StatusOK, kickoffResponse{
		KickoffID: id,
		Status:    model.StatePending,
		Message:   kickoffMessage,
	})
}

// isJSONObject reports whether raw is a JSON object.
func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
