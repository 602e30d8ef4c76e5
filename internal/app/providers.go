package app

import (
	"fmt"
	"strings"

	"github.com/wizardline/wizardline/internal/config"
	"github.com/wizardline/wizardline/internal/gateway"
)

// resolveCompleter picks the completion vendor. "auto" prefers OpenAI, then
// Anthropic, then the mock fallback when no key is configured.
func resolveCompleter(cfg config.Config) (gateway.Completer, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.CompletionProvider))
	if mode == "" {
		mode = "auto"
	}

	newOpenAI := func() (gateway.Completer, error) {
		return gateway.NewOpenAIProvider(gateway.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			ChatModel:   cfg.OpenAIChatModel,
			Temperature: float32(cfg.OpenAITemperature),
			TTSModel:    cfg.OpenAITTSModel,
			TTSVoice:    cfg.OpenAITTSVoice,
		})
	}
	newAnthropic := func() (gateway.Completer, error) {
		return gateway.NewAnthropicProvider(gateway.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
		})
	}

	switch mode {
	case "openai":
		c, err := newOpenAI()
		if err != nil {
			return nil, "", fmt.Errorf("COMPLETION_PROVIDER=openai: %w", err)
		}
		return c, "openai", nil
	case "anthropic":
		c, err := newAnthropic()
		if err != nil {
			return nil, "", fmt.Errorf("COMPLETION_PROVIDER=anthropic: %w", err)
		}
		return c, "anthropic", nil
	case "mock":
		return gateway.NewMockProvider(), "mock", nil
	case "auto":
		if cfg.OpenAIAPIKey != "" {
			c, err := newOpenAI()
			if err != nil {
				return nil, "", err
			}
			return c, "openai", nil
		}
		if cfg.AnthropicAPIKey != "" {
			c, err := newAnthropic()
			if err != nil {
				return nil, "", err
			}
			return c, "anthropic", nil
		}
		return gateway.NewMockProvider(), "mock", nil
	default:
		return nil, "", fmt.Errorf("invalid COMPLETION_PROVIDER: %q", cfg.CompletionProvider)
	}
}

// resolveSynthesizer picks the speech vendor. "off" disables synthesis
// entirely; turns are then persisted text-only.
func resolveSynthesizer(cfg config.Config) (gateway.Synthesizer, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.SpeechProvider))
	if mode == "" {
		mode = "auto"
	}

	newOpenAI := func() (gateway.Synthesizer, error) {
		return gateway.NewOpenAIProvider(gateway.OpenAIConfig{
			APIKey:    cfg.OpenAIAPIKey,
			ChatModel: cfg.OpenAIChatModel,
			TTSModel:  cfg.OpenAITTSModel,
			TTSVoice:  cfg.OpenAITTSVoice,
		})
	}
	newElevenLabs := func() (gateway.Synthesizer, error) {
		return gateway.NewElevenLabsProvider(gateway.ElevenLabsConfig{
			APIKey:    cfg.ElevenLabsAPIKey,
			WSBaseURL: cfg.ElevenLabsWSBaseURL,
			VoiceID:   cfg.ElevenLabsTTSVoiceID,
			ModelID:   cfg.ElevenLabsTTSModelID,
		})
	}

	switch mode {
	case "openai":
		s, err := newOpenAI()
		if err != nil {
			return nil, "", fmt.Errorf("SPEECH_PROVIDER=openai: %w", err)
		}
		return s, "openai", nil
	case "elevenlabs":
		s, err := newElevenLabs()
		if err != nil {
			return nil, "", fmt.Errorf("SPEECH_PROVIDER=elevenlabs: %w", err)
		}
		return s, "elevenlabs", nil
	case "mock":
		return gateway.NewMockProvider(), "mock", nil
	case "off":
		return nil, "off", nil
	case "auto":
		if cfg.ElevenLabsAPIKey != "" {
			s, err := newElevenLabs()
			if err != nil {
				return nil, "", err
			}
			return s, "elevenlabs", nil
		}
		if cfg.OpenAIAPIKey != "" {
			s, err := newOpenAI()
			if err != nil {
				return nil, "", err
			}
			return s, "openai", nil
		}
		return nil, "off", nil
	default:
		return nil, "", fmt.Errorf("invalid SPEECH_PROVIDER: %q", cfg.SpeechProvider)
	}
}
