package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the wizardline service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	DataDir     string
	DatabaseURL string

	CompletionProvider string
	SpeechProvider     string

	OpenAIAPIKey      string
	OpenAIChatModel   string
	OpenAITemperature float64
	OpenAITTSModel    string
	OpenAITTSVoice    string

	AnthropicAPIKey string
	AnthropicModel  string

	ElevenLabsAPIKey     string
	ElevenLabsWSBaseURL  string
	ElevenLabsTTSVoiceID string
	ElevenLabsTTSModelID string

	ModelTimeout  time.Duration
	SpeechTimeout time.Duration

	PerfWindowSize int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:             envOrDefault("APP_BIND_ADDR", ":3001"),
		MetricsNamespace:     envOrDefault("APP_METRICS_NAMESPACE", "wizardline"),
		DataDir:              envOrDefault("APP_DATA_DIR", "data"),
		DatabaseURL:          envTrimmed("DATABASE_URL"),
		CompletionProvider:   envOrDefault("COMPLETION_PROVIDER", "auto"),
		SpeechProvider:       envOrDefault("SPEECH_PROVIDER", "auto"),
		OpenAIAPIKey:         envTrimmed("OPENAI_API_KEY"),
		OpenAIChatModel:      envOrDefault("OPENAI_CHAT_MODEL", "gpt-3.5-turbo"),
		OpenAITemperature:    0.7,
		OpenAITTSModel:       envOrDefault("OPENAI_TTS_MODEL", "tts-1"),
		OpenAITTSVoice:       envOrDefault("OPENAI_TTS_VOICE", "alloy"),
		AnthropicAPIKey:      envTrimmed("ANTHROPIC_API_KEY"),
		AnthropicModel:       envTrimmed("ANTHROPIC_MODEL"),
		ElevenLabsAPIKey:     envTrimmed("ELEVENLABS_API_KEY"),
		ElevenLabsWSBaseURL:  envOrDefault("ELEVENLABS_WS_BASE_URL", "wss://api.elevenlabs.io"),
		ElevenLabsTTSVoiceID: envTrimmed("ELEVENLABS_TTS_VOICE_ID"),
		ElevenLabsTTSModelID: envOrDefault("ELEVENLABS_TTS_MODEL_ID", "eleven_multilingual_v2"),
		ShutdownTimeout:      15 * time.Second,
		ModelTimeout:         60 * time.Second,
		SpeechTimeout:        30 * time.Second,
		PerfWindowSize:       256,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ModelTimeout, err = durationFromEnv("MODEL_TIMEOUT", cfg.ModelTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SpeechTimeout, err = durationFromEnv("SPEECH_TIMEOUT", cfg.SpeechTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.OpenAITemperature, err = floatFromEnv("OPENAI_TEMPERATURE", cfg.OpenAITemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.PerfWindowSize, err = intFromEnv("APP_PERF_WINDOW_SIZE", cfg.PerfWindowSize)
	if err != nil {
		return Config{}, err
	}

	if cfg.ModelTimeout <= 0 {
		return Config{}, fmt.Errorf("MODEL_TIMEOUT must be positive")
	}
	if cfg.SpeechTimeout <= 0 {
		return Config{}, fmt.Errorf("SPEECH_TIMEOUT must be positive")
	}
	if cfg.PerfWindowSize <= 0 {
		return Config{}, fmt.Errorf("APP_PERF_WINDOW_SIZE must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.CompletionProvider)) {
	case "auto", "openai", "anthropic", "mock":
	default:
		return Config{}, fmt.Errorf("invalid COMPLETION_PROVIDER: %q (expected auto|openai|anthropic|mock)", cfg.CompletionProvider)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.SpeechProvider)) {
	case "auto", "openai", "elevenlabs", "mock", "off":
	default:
		return Config{}, fmt.Errorf("invalid SPEECH_PROVIDER: %q (expected auto|openai|elevenlabs|mock|off)", cfg.SpeechProvider)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}
