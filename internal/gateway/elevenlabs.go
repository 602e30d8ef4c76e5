package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/wizardline/wizardline/internal/audio"
	"github.com/wizardline/wizardline/internal/reliability"
)

type ElevenLabsConfig struct {
	APIKey     string
	WSBaseURL  string
	VoiceID    string
	ModelID    string
	SampleRate int
}

// ElevenLabsProvider synthesizes speech over the stream-input websocket API.
// The PCM output is wrapped in a WAV container for playback.
type ElevenLabsProvider struct {
	cfg ElevenLabsConfig
}

func NewElevenLabsProvider(cfg ElevenLabsConfig) (*ElevenLabsProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("elevenlabs api key is required")
	}
	if strings.TrimSpace(cfg.WSBaseURL) == "" {
		cfg.WSBaseURL = "wss://api.elevenlabs.io"
	}
	if strings.TrimSpace(cfg.VoiceID) == "" {
		cfg.VoiceID = "cgSgspJ2msm6clMCkdW9"
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	return &ElevenLabsProvider{cfg: cfg}, nil
}

func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	u, err := url.Parse(strings.TrimRight(p.cfg.WSBaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(p.cfg.VoiceID) + "/stream-input")
	if err != nil {
		return nil, "", fmt.Errorf("parse ws url: %w", err)
	}
	q := u.Query()
	q.Set("model_id", p.cfg.ModelID)
	q.Set("output_format", fmt.Sprintf("pcm_%d", p.cfg.SampleRate))
	q.Set("auto_mode", "true")
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("xi-api-key", p.cfg.APIKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			return nil, "", &UpstreamError{
				Status:    resp.StatusCode,
				Body:      resp.Status,
				Retryable: reliability.RetryableStatus(resp.StatusCode),
			}
		}
		return nil, "", transportErr("dial tts websocket", err)
	}
	defer conn.Close()

	// Prime the stream, send the full text, then the empty-text EOS marker.
	init := map[string]any{
		"text": " ",
		"voice_settings": map[string]any{
			"stability":        0.42,
			"similarity_boost": 0.85,
		},
	}
	if err := conn.WriteJSON(init); err != nil {
		return nil, "", transportErr("prime tts stream", err)
	}
	if err := conn.WriteJSON(map[string]any{"text": text, "try_trigger_generation": true}); err != nil {
		return nil, "", transportErr("send tts text", err)
	}
	if err := conn.WriteJSON(map[string]any{"text": ""}); err != nil {
		return nil, "", transportErr("close tts input", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	var pcm []byte
	for {
		var msg struct {
			Audio       string `json:"audio"`
			IsFinal     bool   `json:"isFinal"`
			Error       string `json:"error"`
			MessageType string `json:"message_type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) && len(pcm) > 0 {
				break
			}
			return nil, "", transportErr("read tts stream", err)
		}
		if msg.Error != "" {
			return nil, "", &UpstreamError{
				Status:    http.StatusBadGateway,
				Body:      fmt.Sprintf("%s: %s", msg.MessageType, msg.Error),
				Retryable: reliability.RetryableStreamCode(msg.MessageType),
			}
		}
		if msg.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, "", fmt.Errorf("decode audio chunk: %w", err)
			}
			pcm = append(pcm, chunk...)
		}
		if msg.IsFinal {
			break
		}
	}

	if len(pcm) == 0 {
		return nil, "", &UpstreamError{Status: http.StatusBadGateway, Body: "synthesis produced no audio"}
	}
	return audio.WrapPCM16LE(pcm, p.cfg.SampleRate), "audio/wav", nil
}
