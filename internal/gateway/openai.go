package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wizardline/wizardline/internal/prompt"
	"github.com/wizardline/wizardline/internal/reliability"
)

type OpenAIConfig struct {
	APIKey      string
	ChatModel   string
	Temperature float32
	TTSModel    string
	TTSVoice    string
}

// OpenAIProvider implements both capabilities against the OpenAI API:
// chat completions for answers and the speech endpoint for audio.
type OpenAIProvider struct {
	client *openai.Client
	cfg    OpenAIConfig
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if strings.TrimSpace(cfg.ChatModel) == "" {
		cfg.ChatModel = openai.GPT3Dot5Turbo
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if strings.TrimSpace(cfg.TTSModel) == "" {
		cfg.TTSModel = string(openai.TTSModel1)
	}
	if strings.TrimSpace(cfg.TTSVoice) == "" {
		cfg.TTSVoice = string(openai.VoiceAlloy)
	}
	return &OpenAIProvider{client: openai.NewClient(cfg.APIKey), cfg: cfg}, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.cfg.ChatModel,
		Temperature: p.cfg.Temperature,
		Messages:    toOpenAIMessages(messages),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIErr("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Status: 200, Body: "completion returned no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(p.cfg.TTSModel),
		Input: text,
		Voice: openai.SpeechVoice(p.cfg.TTSVoice),
	})
	if err != nil {
		return nil, "", classifyOpenAIErr("speech synthesis", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, "", transportErr("read speech response", err)
	}
	return data, "audio/mpeg", nil
}

func toOpenAIMessages(messages []prompt.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}

func classifyOpenAIErr(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{
			Status:    apiErr.HTTPStatusCode,
			Body:      apiErr.Message,
			Retryable: reliability.RetryableStatus(apiErr.HTTPStatusCode),
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{
			Status:    reqErr.HTTPStatusCode,
			Body:      reqErr.Error(),
			Retryable: reliability.RetryableStatus(reqErr.HTTPStatusCode),
		}
	}
	return transportErr(op, err)
}
