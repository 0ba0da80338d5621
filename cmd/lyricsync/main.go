// Command lyricsync runs the lyric synchronization service: an HTTP API
// that turns uploaded audio into word-timestamped transcripts suitable for
// karaoke-style lyric display.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/lyricsync/api"
	"github.com/skillsenselab/lyricsync/component"
	"github.com/skillsenselab/lyricsync/config"
	"github.com/skillsenselab/lyricsync/logger"
	"github.com/skillsenselab/lyricsync/observability"
	"github.com/skillsenselab/lyricsync/pipeline"
	"github.com/skillsenselab/lyricsync/separation"
	"github.com/skillsenselab/lyricsync/separation/demucs"
	"github.com/skillsenselab/lyricsync/server"
	"github.com/skillsenselab/lyricsync/server/endpoint"
	"github.com/skillsenselab/lyricsync/transcription"
	"github.com/skillsenselab/lyricsync/transcription/whisper"
	"github.com/skillsenselab/lyricsync/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lyricsync: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()
	log.Info("Starting lyricsync", logger.Fields(
		"environment", cfg.Environment,
		"build", version.Get().String(),
	))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Optional distributed tracing.
	if cfg.Observability.Enabled {
		tcfg := observability.DefaultTracerConfig(cfg.Name)
		tcfg.ServiceVersion = cfg.Version
		tcfg.Environment = cfg.Environment
		tcfg.Endpoint = cfg.Observability.Endpoint
		tcfg.SampleRate = cfg.Observability.SampleRate

		tp, err := observability.InitTracer(ctx, tcfg)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn("Tracer shutdown error", logger.Fields(logger.FieldError, err.Error()))
			}
		}()
	}

	models := newModelManager(cfg, log)

	separator, err := newSeparator(cfg)
	if err != nil {
		return fmt.Errorf("separation backend: %w", err)
	}

	pipe := pipeline.New(cfg.Pipeline, models, separator, log)

	// The health probe uses its own provider instance so it never touches
	// the lazily-constructed model.
	whisperProbe := whisper.NewProvider(cfg.Whisper, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, healthChecker(models, whisperProbe, separator))
	api.NewHandler(pipe, log).Register(srv.GinEngine())
	if cfg.Debug {
		srv.EnableProfiling()
	}

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	return srv.Stop(stopCtx)
}

// newModelManager wires the whisper backend through the transcription
// registry behind a single-flight manager, so the model loads lazily on the
// first request and at most once per process.
func newModelManager(cfg *config.Config, log *logger.Logger) *transcription.Manager {
	backends := transcription.NewRegistry()
	backends.RegisterFactory(whisper.ProviderName, whisper.Factory(log))
	log.Info("Transcription backends registered", logger.Fields("backends", backends.List()))

	return transcription.NewManager(func(ctx context.Context) (transcription.Provider, error) {
		p, err := backends.Create(whisper.ProviderName, map[string]any{
			"url":          cfg.Whisper.URL,
			"model":        cfg.Whisper.Model,
			"language":     cfg.Whisper.Language,
			"device":       cfg.Whisper.Device,
			"compute_type": cfg.Whisper.ComputeType,
			"timeout":      cfg.Whisper.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if loader, ok := p.(interface{ LoadModel(context.Context) error }); ok {
			if err := loader.LoadModel(ctx); err != nil {
				return nil, err
			}
		}
		return p, nil
	}, log)
}

// newSeparator builds the optional vocal-isolation backend. A nil return
// with nil error means separation is disabled and the pipeline transcribes
// the original mix.
func newSeparator(cfg *config.Config) (separation.Provider, error) {
	if !cfg.Demucs.Enabled {
		return nil, nil
	}
	seps := separation.NewRegistry()
	seps.RegisterFactory(demucs.ProviderName, demucs.Factory())
	return seps.Create(demucs.ProviderName, map[string]any{
		"base_url": cfg.Demucs.BaseURL,
		"stem":     cfg.Demucs.Stem,
		"timeout":  cfg.Demucs.Timeout,
	})
}

func healthChecker(models *transcription.Manager, whisperProbe *whisper.Provider, separator separation.Provider) endpoint.HealthChecker {
	return func(ctx context.Context) []component.Health {
		components := []component.Health{whisperHealth(ctx, models, whisperProbe)}
		if separator != nil {
			components = append(components, separatorHealth(ctx, separator))
		}
		return components
	}
}

func whisperHealth(ctx context.Context, models *transcription.Manager, probe *whisper.Provider) component.Health {
	h := component.Health{Name: "whisper", Status: component.StatusHealthy}
	if !probe.IsAvailable(ctx) {
		h.Status = component.StatusUnhealthy
		h.Message = "transcription sidecar unreachable"
		return h
	}
	if !models.IsLoaded() {
		h.Message = "model not loaded yet"
	}
	return h
}

func separatorHealth(ctx context.Context, p separation.Provider) component.Health {
	h := component.Health{Name: p.Name(), Status: component.StatusHealthy}
	if !p.IsAvailable(ctx) {
		// Separation is best-effort, so a down sidecar only degrades.
		h.Status = component.StatusDegraded
		h.Message = "separation sidecar unreachable"
	}
	return h
}
