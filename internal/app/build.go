package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/wizardline/wizardline/internal/audio"
	"github.com/wizardline/wizardline/internal/config"
	"github.com/wizardline/wizardline/internal/httpapi"
	"github.com/wizardline/wizardline/internal/observability"
	"github.com/wizardline/wizardline/internal/persona"
	"github.com/wizardline/wizardline/internal/record"
	"github.com/wizardline/wizardline/internal/turn"
)

type BuildResult struct {
	Config       config.Config
	API          *httpapi.Server
	Orchestrator *turn.Orchestrator
	Personas     persona.Store
	Records      record.Store
	Assets       audio.Resolver
	Metrics      *observability.Metrics

	// Names of the resolved providers, for startup logging.
	CompletionProvider string
	SpeechProvider     string

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	window := observability.NewStageWindow(cfg.PerfWindowSize)

	personas, err := persona.NewStore(ctx, cfg.DatabaseURL, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("persona store init failed: %w", err)
	}
	records, err := record.NewStore(ctx, cfg.DatabaseURL, cfg.DataDir)
	if err != nil {
		_ = personas.Close()
		return nil, fmt.Errorf("record store init failed: %w", err)
	}
	assets, err := audio.NewResolver(cfg.DataDir)
	if err != nil {
		_ = records.Close()
		_ = personas.Close()
		return nil, fmt.Errorf("audio resolver init failed: %w", err)
	}

	completer, completionName, err := resolveCompleter(cfg)
	if err != nil {
		_ = assets.Close()
		_ = records.Close()
		_ = personas.Close()
		return nil, err
	}
	synthesizer, speechName, err := resolveSynthesizer(cfg)
	if err != nil {
		_ = assets.Close()
		_ = records.Close()
		_ = personas.Close()
		return nil, err
	}

	orchestrator := turn.NewOrchestrator(
		personas,
		records,
		completer,
		synthesizer,
		assets,
		metrics,
		window,
		cfg.ModelTimeout,
		cfg.SpeechTimeout,
	)

	api := httpapi.New(orchestrator, personas, records, assets, metrics, window)

	cleanup := func() error {
		var errs []string
		if err := assets.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := records.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := personas.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:             cfg,
		API:                api,
		Orchestrator:       orchestrator,
		Personas:           personas,
		Records:            records,
		Assets:             assets,
		Metrics:            metrics,
		CompletionProvider: completionName,
		SpeechProvider:     speechName,
		Cleanup:            cleanup,
	}, nil
}
