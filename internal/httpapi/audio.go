package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wizardline/wizardline/internal/audio"
)

func (s *Server) handleGetAudio(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing audio handle")
		return
	}

	data, contentType, err := s.assets.Resolve(r.Context(), handle)
	if err != nil {
		if errors.Is(err, audio.ErrNotFound) {
			respondError(w, http.StatusNotFound, "audio_not_found", "no audio stored for handle "+handle)
			return
		}
		respondError(w, http.StatusInternalServerError, "storage_failed", err.Error())
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
