package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_BIND_ADDR", "APP_METRICS_NAMESPACE", "APP_DATA_DIR", "DATABASE_URL",
		"COMPLETION_PROVIDER", "SPEECH_PROVIDER", "OPENAI_API_KEY", "OPENAI_CHAT_MODEL",
		"OPENAI_TEMPERATURE", "MODEL_TIMEOUT", "SPEECH_TIMEOUT", "APP_SHUTDOWN_TIMEOUT",
		"APP_PERF_WINDOW_SIZE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":3001" {
		t.Errorf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.CompletionProvider != "auto" || cfg.SpeechProvider != "auto" {
		t.Errorf("providers = %q, %q", cfg.CompletionProvider, cfg.SpeechProvider)
	}
	if cfg.ModelTimeout != 60*time.Second || cfg.SpeechTimeout != 30*time.Second {
		t.Errorf("timeouts = %v, %v", cfg.ModelTimeout, cfg.SpeechTimeout)
	}
	if cfg.PerfWindowSize != 256 {
		t.Errorf("PerfWindowSize = %d", cfg.PerfWindowSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_BIND_ADDR", ":9000")
	t.Setenv("COMPLETION_PROVIDER", "anthropic")
	t.Setenv("SPEECH_PROVIDER", "off")
	t.Setenv("MODEL_TIMEOUT", "90s")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9000" {
		t.Errorf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.CompletionProvider != "anthropic" || cfg.SpeechProvider != "off" {
		t.Errorf("providers = %q, %q", cfg.CompletionProvider, cfg.SpeechProvider)
	}
	if cfg.ModelTimeout != 90*time.Second {
		t.Errorf("ModelTimeout = %v", cfg.ModelTimeout)
	}
	if cfg.OpenAITemperature != 0.2 {
		t.Errorf("OpenAITemperature = %v", cfg.OpenAITemperature)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPLETION_PROVIDER", "bard")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted unknown completion provider")
	}

	clearEnv(t)
	t.Setenv("SPEECH_PROVIDER", "espeak")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted unknown speech provider")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted unparseable MODEL_TIMEOUT")
	}

	clearEnv(t)
	t.Setenv("MODEL_TIMEOUT", "-5s")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted negative MODEL_TIMEOUT")
	}
}
