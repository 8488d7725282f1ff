package api

import (
	"net/http"
)

func (s *Server) handleIndexStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"build":       s.orchestrator.Stats().Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"documents":   s.orchestrator.Documents().Len(),
	})
}
