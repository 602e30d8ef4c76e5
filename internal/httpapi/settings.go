package httpapi

import (
	"net/http"

	"github.com/wizardline/wizardline/internal/persona"
)

func (s *Server) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.personas.Get(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "settings_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSetPersona(w http.ResponseWriter, r *http.Request) {
	var update persona.Config
	if err := decodeJSON(r, &update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	stored, err := s.personas.Set(r.Context(), update)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "settings_not_saved", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stored)
}
