package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/wizardline/wizardline/internal/prompt"
	"github.com/wizardline/wizardline/internal/reliability"
)

type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// AnthropicProvider implements completion against the Anthropic messages API.
// Anthropic has no speech endpoint, so this provider is completion-only.
type AnthropicProvider struct {
	client anthropic.Client
	cfg    AnthropicConfig
}

func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = string(anthropic.ModelClaudeSonnet4_0)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:    cfg,
	}, nil
}

func (p *AnthropicProvider) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: p.cfg.MaxTokens,
	}

	// The assembler's leading system message maps to the system parameter;
	// the rest map to alternating user/assistant messages.
	for _, m := range messages {
		switch m.Role {
		case prompt.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case prompt.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{
				Status:    apiErr.StatusCode,
				Body:      apiErr.Error(),
				Retryable: reliability.RetryableStatus(apiErr.StatusCode),
			}
		}
		return "", transportErr("messages", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", &UpstreamError{Status: 200, Body: "message contained no text blocks"}
	}
	return out.String(), nil
}
