// Package turn runs one question/answer exchange end to end: validate,
// assemble context, complete, optionally synthesize speech, persist.
package turn

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wizardline/wizardline/internal/audio"
	"github.com/wizardline/wizardline/internal/gateway"
	"github.com/wizardline/wizardline/internal/observability"
	"github.com/wizardline/wizardline/internal/persona"
	"github.com/wizardline/wizardline/internal/prompt"
	"github.com/wizardline/wizardline/internal/record"
)

type Stage string

const (
	StageValidating   Stage = "validating"
	StageAssembling   Stage = "assembling_context"
	StageCompleting   Stage = "completing"
	StageSynthesizing Stage = "synthesizing"
	StagePersisting   Stage = "persisting"
	StageDone         Stage = "done"
)

// StageError reports which stage a turn failed in. A Persisting failure
// means the model already answered but the exchange was not saved.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("turn failed in %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

var ErrEmptyUtterance = errors.New("utterance text is empty")

// Request is one submitted utterance. When HistoryProvided is set, History
// replaces the stored log for context assembly (it is still not persisted).
type Request struct {
	Utterance       string
	History         []record.Turn
	HistoryProvided bool
}

type Orchestrator struct {
	personas      persona.Store
	records       record.Store
	completer     gateway.Completer
	synthesizer   gateway.Synthesizer
	assets        audio.Resolver
	metrics       *observability.Metrics
	window        *observability.StageWindow
	modelTimeout  time.Duration
	speechTimeout time.Duration
}

// NewOrchestrator wires the turn pipeline. A nil synthesizer disables the
// Synthesizing stage entirely.
func NewOrchestrator(
	personas persona.Store,
	records record.Store,
	completer gateway.Completer,
	synthesizer gateway.Synthesizer,
	assets audio.Resolver,
	metrics *observability.Metrics,
	window *observability.StageWindow,
	modelTimeout time.Duration,
	speechTimeout time.Duration,
) *Orchestrator {
	if modelTimeout <= 0 {
		modelTimeout = 60 * time.Second
	}
	if speechTimeout <= 0 {
		speechTimeout = 30 * time.Second
	}
	return &Orchestrator{
		personas:      personas,
		records:       records,
		completer:     completer,
		synthesizer:   synthesizer,
		assets:        assets,
		metrics:       metrics,
		window:        window,
		modelTimeout:  modelTimeout,
		speechTimeout: speechTimeout,
	}
}

// Run executes one turn. On success the returned record is already appended
// to the log. On failure the returned error is a *StageError; no partial
// record is ever persisted.
func (o *Orchestrator) Run(ctx context.Context, req Request) (record.Turn, error) {
	if o.metrics != nil {
		o.metrics.TurnsInFlight.Inc()
		defer o.metrics.TurnsInFlight.Dec()
	}
	started := time.Now()

	// Validating.
	if strings.TrimSpace(req.Utterance) == "" {
		return record.Turn{}, o.fail(StageValidating, ErrEmptyUtterance)
	}
	p, err := o.personas.Get(ctx)
	if err != nil {
		return record.Turn{}, o.fail(StageValidating, err)
	}
	o.observe(StageValidating, started)

	// Past validation the turn is no longer cancellable: a caller that stops
	// waiting must not abort the in-flight model call or its persistence.
	ctx = context.WithoutCancel(ctx)

	// AssemblingContext.
	assembleStart := time.Now()
	history := req.History
	if !req.HistoryProvided {
		history, err = o.records.List(ctx)
		if err != nil {
			return record.Turn{}, o.fail(StageAssembling, err)
		}
	}
	messages, err := prompt.Assemble(req.Utterance, p, history)
	if err != nil {
		return record.Turn{}, o.fail(StageAssembling, err)
	}
	o.observe(StageAssembling, assembleStart)

	// Completing. Failure here drops the exchange; nothing is recorded.
	completeStart := time.Now()
	completeCtx, cancel := context.WithTimeout(ctx, o.modelTimeout)
	answer, err := o.completer.Complete(completeCtx, messages)
	cancel()
	if err != nil {
		o.countVendorError("completion", err)
		return record.Turn{}, o.fail(StageCompleting, err)
	}
	o.observe(StageCompleting, completeStart)

	// Synthesizing is best-effort: a failure degrades the turn to text-only.
	audioHandle := ""
	if o.synthesizer != nil {
		synthStart := time.Now()
		synthCtx, cancel := context.WithTimeout(ctx, o.speechTimeout)
		data, contentType, err := o.synthesizer.Synthesize(synthCtx, answer)
		cancel()
		if err != nil {
			o.countVendorError("synthesis", err)
			log.Printf("speech synthesis failed, persisting text-only turn: %v", err)
		} else if handle, err := o.assets.Store(ctx, data, contentType); err != nil {
			log.Printf("audio asset store failed, persisting text-only turn: %v", err)
		} else {
			audioHandle = handle
		}
		o.observe(StageSynthesizing, synthStart)
	}

	// Persisting. The persona snapshot is the value fetched at validation,
	// not a re-read; later persona edits must not rewrite this turn.
	persistStart := time.Now()
	turn := record.Turn{
		ID:          uuid.NewString(),
		Utterance:   req.Utterance,
		CreatedAt:   time.Now().UTC(),
		Persona:     p,
		Answer:      answer,
		AudioHandle: audioHandle,
	}
	if err := o.records.Append(ctx, turn); err != nil {
		return record.Turn{}, o.fail(StagePersisting, err)
	}
	o.observe(StagePersisting, persistStart)

	o.observe(Stage("turn_total"), started)
	if o.metrics != nil {
		o.metrics.Turns.WithLabelValues(string(StageDone)).Inc()
	}
	return turn, nil
}

func (o *Orchestrator) fail(stage Stage, err error) error {
	if o.metrics != nil {
		o.metrics.Turns.WithLabelValues("failed_" + string(stage)).Inc()
	}
	return &StageError{Stage: stage, Err: err}
}

func (o *Orchestrator) observe(stage Stage, since time.Time) {
	d := time.Since(since)
	if o.metrics != nil {
		o.metrics.ObserveStage(string(stage), d)
	}
	if o.window != nil {
		o.window.Observe(string(stage), d)
	}
}

func (o *Orchestrator) countVendorError(capability string, err error) {
	if o.metrics == nil {
		return
	}
	kind := "transport"
	var upstream *gateway.UpstreamError
	if errors.As(err, &upstream) {
		kind = "upstream"
	}
	o.metrics.VendorErrors.WithLabelValues(capability, kind).Inc()
}
