package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/wizardline/wizardline/internal/gateway"
	"github.com/wizardline/wizardline/internal/persona"
	"github.com/wizardline/wizardline/internal/prompt"
	"github.com/wizardline/wizardline/internal/record"
	"github.com/wizardline/wizardline/internal/turn"
)

type submitTurnRequest struct {
	Text string `json:"text"`
	// History, when present, replaces the stored log for this turn's
	// context assembly. The submitted entries are not persisted.
	History *[]record.Turn `json:"history,omitempty"`
}

func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	var req submitTurnRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	turnReq := turn.Request{Utterance: req.Text}
	if req.History != nil {
		turnReq.History = *req.History
		turnReq.HistoryProvided = true
	}

	completed, err := s.runner.Run(r.Context(), turnReq)
	if err != nil {
		status, code := classifyTurnError(err)
		respondError(w, status, code, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, completed)
}

func (s *Server) handleListTurns(w http.ResponseWriter, r *http.Request) {
	turns, err := s.records.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "storage_failed", err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.RecordsTotal.Set(float64(len(turns)))
	}

	// Storage order is oldest first; the UI asks for newest first.
	if strings.EqualFold(r.URL.Query().Get("order"), "desc") {
		for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
			turns[i], turns[j] = turns[j], turns[i]
		}
	}
	if turns == nil {
		turns = []record.Turn{}
	}
	respondJSON(w, http.StatusOK, turns)
}

// classifyTurnError maps the error taxonomy onto HTTP statuses. A Persisting
// failure gets its own code so clients can tell "the model answered but the
// turn was not saved" from "nothing happened".
func classifyTurnError(err error) (int, string) {
	var stageErr *turn.StageError
	if !errors.As(err, &stageErr) {
		return http.StatusInternalServerError, "internal"
	}

	if stageErr.Stage == turn.StagePersisting {
		return http.StatusInternalServerError, "not_saved"
	}

	switch {
	case errors.Is(err, turn.ErrEmptyUtterance):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, prompt.ErrInvalidPersona):
		return http.StatusInternalServerError, "persona_misconfigured"
	case errors.Is(err, persona.ErrPersistence), errors.Is(err, record.ErrPersistence):
		return http.StatusInternalServerError, "storage_failed"
	case errors.Is(err, gateway.ErrTransport):
		return http.StatusGatewayTimeout, "transport_error"
	}

	var upstream *gateway.UpstreamError
	if errors.As(err, &upstream) {
		return http.StatusBadGateway, "upstream_error"
	}
	return http.StatusInternalServerError, "internal"
}
