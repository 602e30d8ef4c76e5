package httpapi

import "net/http"

func (s *Server) handlePerf(w http.ResponseWriter, _ *http.Request) {
	if s.window == nil {
		respondError(w, http.StatusNotFound, "perf_disabled", "stage window not configured")
		return
	}
	respondJSON(w, http.StatusOK, s.window.Snapshot())
}
