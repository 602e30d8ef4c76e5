package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wizardline/wizardline/internal/audio"
	"github.com/wizardline/wizardline/internal/observability"
	"github.com/wizardline/wizardline/internal/persona"
	"github.com/wizardline/wizardline/internal/record"
	"github.com/wizardline/wizardline/internal/turn"
)

// Runner executes one conversation turn.
type Runner interface {
	Run(ctx context.Context, req turn.Request) (record.Turn, error)
}

type Server struct {
	runner   Runner
	personas persona.Store
	records  record.Store
	assets   audio.Resolver
	metrics  *observability.Metrics
	window   *observability.StageWindow
}

func New(
	runner Runner,
	personas persona.Store,
	records record.Store,
	assets audio.Resolver,
	metrics *observability.Metrics,
	window *observability.StageWindow,
) *Server {
	return &Server{
		runner:   runner,
		personas: personas,
		records:  records,
		assets:   assets,
		metrics:  metrics,
		window:   window,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/records", s.handleSubmitTurn)
	r.Get("/api/records", s.handleListTurns)
	r.Get("/api/settings", s.handleGetPersona)
	r.Post("/api/settings", s.handleSetPersona)
	r.Get("/api/audio/{handle}", s.handleGetAudio)
	r.Get("/api/perf", s.handlePerf)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
