package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/wizardline/wizardline/internal/audio"
	"github.com/wizardline/wizardline/internal/prompt"
)

// MockProvider is the fallback when no vendor is configured. Deterministic
// output keeps local development and tests self-contained.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (p *MockProvider) Complete(_ context.Context, messages []prompt.Message) (string, error) {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == prompt.RoleUser {
			last = messages[i].Content
			break
		}
	}
	if strings.TrimSpace(last) == "" {
		return "Silence. How refreshing.", nil
	}
	return fmt.Sprintf("You asked %q. The answer is obviously no.", last), nil
}

func (p *MockProvider) Synthesize(_ context.Context, _ string) ([]byte, string, error) {
	// 200ms of 16kHz mono silence.
	return audio.WrapPCM16LE(make([]byte, 16000/5*2), 16000), "audio/wav", nil
}
