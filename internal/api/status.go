package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/answerlab/evald/internal/model"
	"github.com/answerlab/evald/internal/registry"
)

// statusResponse is the JSON response for GET /status/{kickoff_id}. Fields
// without values are rendered as explicit nulls.
type statusResponse struct {
	State            string            `json:"state"`
	LastExecutedTask *model.TaskOutput `json:"last_executed_task"`
	StartedAt        time.Time         `json:"started_at"`
	CompletedAt      *time.Time        `json:"completed_at"`
	Error            *string           `json:"error"`
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "kickoff_id")

	j, err := s.registry.Get(id)
	if errors.Is(err, registry.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "execution not found")
		return
	}
	if err != nil {
		s.logger.Error("get job", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get execution")
		return
	}

	resp := statusResponse{
		State:            j.State,
		LastExecutedTask: j.Result,
		StartedAt:        j.StartedAt,
		CompletedAt:      j.CompletedAt,
	}
	if j.Error != "" {
		resp.Error = &j.Error
	}

	s.writeJSON(w, http.StatusOK, resp)
}
