// Package gateway abstracts the external text-completion and speech-synthesis
// vendors behind two narrow capabilities. Calls cross the network and are not
// idempotent: a timeout after the far side accepted the request may still have
// produced a billed generation. Nothing here retries; callers decide.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/wizardline/wizardline/internal/prompt"
)

// Completer produces the assistant's answer text for an assembled prompt.
type Completer interface {
	Complete(ctx context.Context, messages []prompt.Message) (string, error)
}

// Synthesizer turns answer text into playable audio bytes plus content type.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}

// UpstreamError carries a vendor's non-success response for diagnosis.
type UpstreamError struct {
	Status    int
	Body      string
	Retryable bool
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// ErrTransport wraps network-level failures reaching a vendor.
var ErrTransport = errors.New("vendor transport failure")

func transportErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}
