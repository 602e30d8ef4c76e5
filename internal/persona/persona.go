package persona

import (
	"context"
	"errors"
	"strings"
)

// Config is the single active persona applied to every model call.
type Config struct {
	Personality  string `json:"personality"`
	Restrictions string `json:"restrictions"`
}

// Default is stored on first read when no persona has ever been configured.
var Default = Config{
	Personality:  "a busy and frustrated wizard who is bored and annoyed by the user",
	Restrictions: "Keep responses brief and terse. Use swear words and sarcasm. If there are repeated questions, lose your temper.",
}

// ErrPersistence marks storage failures, including corrupt stored encodings.
// Corruption is surfaced to the operator, never silently replaced with defaults.
var ErrPersistence = errors.New("persona persistence failed")

// Store holds the process-wide persona configuration.
//
// Get creates and durably persists Default on first read. Set replaces the
// stored configuration wholesale; empty fields keep their current value.
// Reads never observe a partially written configuration; concurrent writes
// are last-write-wins.
type Store interface {
	Get(ctx context.Context) (Config, error)
	Set(ctx context.Context, cfg Config) (Config, error)
	Close() error
}

// merge applies key-overwrite semantics: empty update fields keep current values.
func merge(current, update Config) Config {
	out := current
	if strings.TrimSpace(update.Personality) != "" {
		out.Personality = update.Personality
	}
	if strings.TrimSpace(update.Restrictions) != "" {
		out.Restrictions = update.Restrictions
	}
	return out
}
