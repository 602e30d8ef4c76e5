package record

import (
	"context"
	"errors"
	"time"

	"github.com/wizardline/wizardline/internal/persona"
)

// Turn is one completed question/answer exchange. Persona is a value copy of
// the configuration active when the turn was assembled; later persona edits
// must not retroactively change recorded context. Turns are immutable once
// appended.
type Turn struct {
	ID          string         `json:"id"`
	Utterance   string         `json:"text"`
	CreatedAt   time.Time      `json:"timestamp"`
	Persona     persona.Config `json:"persona"`
	Answer      string         `json:"response,omitempty"`
	AudioHandle string         `json:"audio_handle,omitempty"`
}

// ErrPersistence marks storage failures, including corrupt stored encodings.
var ErrPersistence = errors.New("record persistence failed")

// Store is the append-only conversation log. Append is the only write
// operation; existing entries are never reordered or mutated. Concurrent
// appends must all survive (no lost updates), and a failed append must not
// leave a partially written log. List returns a snapshot in insertion order,
// oldest first.
type Store interface {
	Append(ctx context.Context, turn Turn) error
	List(ctx context.Context) ([]Turn, error)
	Close() error
}
