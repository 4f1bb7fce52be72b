package api

import "net/http"

// statsResponse is the JSON response for GET /stats.
type statsResponse struct {
	Total   int            `json:"total"`
	ByState map[string]int `json:"by_state"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.registry.Stats()

	s.writeJSON(w, http.StatusOK, statsResponse{
		Total:   stats.Total,
		ByState: stats.ByState,
	})
}
