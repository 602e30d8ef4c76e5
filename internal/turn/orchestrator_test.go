package turn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wizardline/wizardline/internal/audio"
	"github.com/wizardline/wizardline/internal/gateway"
	"github.com/wizardline/wizardline/internal/persona"
	"github.com/wizardline/wizardline/internal/prompt"
	"github.com/wizardline/wizardline/internal/record"
)

type stubCompleter struct {
	answer   string
	err      error
	messages []prompt.Message
}

func (c *stubCompleter) Complete(_ context.Context, messages []prompt.Message) (string, error) {
	c.messages = messages
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

type stubSynthesizer struct {
	data        []byte
	contentType string
	err         error
}

func (s *stubSynthesizer) Synthesize(context.Context, string) ([]byte, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.data, s.contentType, nil
}

type failingRecordStore struct {
	record.Store
}

func (failingRecordStore) Append(context.Context, record.Turn) error {
	return record.ErrPersistence
}

func (failingRecordStore) List(context.Context) ([]record.Turn, error) {
	return nil, nil
}

func newTestOrchestrator(completer gateway.Completer, synthesizer gateway.Synthesizer, records record.Store) *Orchestrator {
	return NewOrchestrator(
		persona.NewInMemoryStore(),
		records,
		completer,
		synthesizer,
		audio.NewInMemoryResolver(),
		nil,
		nil,
		time.Minute,
		30*time.Second,
	)
}

func TestRunPersistsTurnWithAudio(t *testing.T) {
	completer := &stubCompleter{answer: "Fine. The answer is four."}
	synth := &stubSynthesizer{data: []byte("mp3-bytes"), contentType: "audio/mpeg"}
	records := record.NewInMemoryStore()
	o := newTestOrchestrator(completer, synth, records)

	turn, err := o.Run(context.Background(), Request{Utterance: "what is two plus two"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if turn.ID == "" || turn.CreatedAt.IsZero() {
		t.Fatalf("turn missing identity fields: %+v", turn)
	}
	if turn.Answer != completer.answer {
		t.Fatalf("Answer = %q", turn.Answer)
	}
	if turn.AudioHandle == "" {
		t.Fatal("expected an audio handle on successful synthesis")
	}
	if turn.Persona != persona.Default {
		t.Fatalf("Persona snapshot = %+v, want Default", turn.Persona)
	}

	stored, err := records.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stored) != 1 || stored[0].ID != turn.ID {
		t.Fatalf("stored log = %+v", stored)
	}
}

func TestRunEmptyUtteranceFailsValidating(t *testing.T) {
	o := newTestOrchestrator(&stubCompleter{answer: "x"}, nil, record.NewInMemoryStore())

	_, err := o.Run(context.Background(), Request{Utterance: "   \t "})
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageValidating {
		t.Fatalf("err = %v, want StageError in %s", err, StageValidating)
	}
	if !errors.Is(err, ErrEmptyUtterance) {
		t.Fatalf("err = %v, want ErrEmptyUtterance", err)
	}
}

func TestRunCompletionFailureDropsExchange(t *testing.T) {
	completer := &stubCompleter{err: &gateway.UpstreamError{Status: 500, Body: "overloaded"}}
	records := record.NewInMemoryStore()
	o := newTestOrchestrator(completer, nil, records)

	_, err := o.Run(context.Background(), Request{Utterance: "hello"})
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageCompleting {
		t.Fatalf("err = %v, want StageError in %s", err, StageCompleting)
	}

	stored, err := records.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("log not empty after completion failure: %+v", stored)
	}
}

func TestRunSynthesisFailureDegradesToTextOnly(t *testing.T) {
	completer := &stubCompleter{answer: "ugh, fine"}
	synth := &stubSynthesizer{err: &gateway.UpstreamError{Status: 503, Body: "busy", Retryable: true}}
	records := record.NewInMemoryStore()
	o := newTestOrchestrator(completer, synth, records)

	turn, err := o.Run(context.Background(), Request{Utterance: "hello"})
	if err != nil {
		t.Fatalf("Run() error = %v, synthesis failure must not fail the turn", err)
	}
	if turn.AudioHandle != "" {
		t.Fatalf("AudioHandle = %q, want empty on synthesis failure", turn.AudioHandle)
	}
	if turn.Answer != "ugh, fine" {
		t.Fatalf("Answer = %q", turn.Answer)
	}
}

func TestRunPersistFailureIsPersistingStage(t *testing.T) {
	completer := &stubCompleter{answer: "saved nowhere"}
	o := newTestOrchestrator(completer, nil, failingRecordStore{})

	_, err := o.Run(context.Background(), Request{Utterance: "hello"})
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StagePersisting {
		t.Fatalf("err = %v, want StageError in %s", err, StagePersisting)
	}
	if !errors.Is(err, record.ErrPersistence) {
		t.Fatalf("err = %v, want record.ErrPersistence", err)
	}
}

func TestRunHistoryOverrideReplacesStoredLog(t *testing.T) {
	completer := &stubCompleter{answer: "again?!"}
	records := record.NewInMemoryStore()
	storedTurn := record.Turn{
		ID:        "stored-1",
		Utterance: "from the stored log",
		CreatedAt: time.Now().UTC(),
		Answer:    "stored answer",
	}
	if err := records.Append(context.Background(), storedTurn); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	o := newTestOrchestrator(completer, nil, records)

	override := []record.Turn{{
		ID:        "override-1",
		Utterance: "from the override",
		CreatedAt: time.Now().UTC(),
		Answer:    "override answer",
	}}
	_, err := o.Run(context.Background(), Request{
		Utterance:       "hello",
		History:         override,
		HistoryProvided: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, m := range completer.messages {
		if m.Content == "from the stored log" {
			t.Fatal("stored log leaked into prompt despite history override")
		}
	}
	var sawOverride bool
	for _, m := range completer.messages {
		if m.Role == prompt.RoleUser && m.Content == "from the override" {
			sawOverride = true
		}
	}
	if !sawOverride {
		t.Fatalf("override history absent from prompt: %+v", completer.messages)
	}
}

func TestRunPersonaSnapshotNotAffectedByLaterEdits(t *testing.T) {
	personas := persona.NewInMemoryStore()
	records := record.NewInMemoryStore()
	o := NewOrchestrator(
		personas,
		records,
		&stubCompleter{answer: "first"},
		nil,
		audio.NewInMemoryResolver(),
		nil,
		nil,
		time.Minute,
		30*time.Second,
	)

	turn, err := o.Run(context.Background(), Request{Utterance: "hello"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := personas.Set(context.Background(), persona.Config{Personality: "a serene monk"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	stored, err := records.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if stored[0].Persona != turn.Persona || stored[0].Persona.Personality == "a serene monk" {
		t.Fatalf("persisted persona mutated by later edit: %+v", stored[0].Persona)
	}
}
