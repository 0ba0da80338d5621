// Package pipeline orchestrates a transcription request end to end:
// scratch-file write, best-effort vocal isolation, model transcription,
// and chunk assembly, with guaranteed cleanup of temporary artifacts.
package pipeline

import (
	"context"
	"os"

	"github.com/skillsenselab/lyricsync/errors"
	"github.com/skillsenselab/lyricsync/logger"
	"github.com/skillsenselab/lyricsync/observability"
	"github.com/skillsenselab/lyricsync/separation"
	"github.com/skillsenselab/lyricsync/transcription"
)

// Config holds pipeline configuration.
type Config struct {
	// ScratchDir is where per-request temporary audio files are written.
	// Defaults to the OS temp directory.
	ScratchDir string `yaml:"scratch_dir" mapstructure:"scratch_dir"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.ScratchDir == "" {
		c.ScratchDir = os.TempDir()
	}
}

// Pipeline coordinates the transcription stages per request. It is safe for
// concurrent use: the model manager serializes construction and scratch
// files are exclusively owned per request.
type Pipeline struct {
	cfg       Config
	models    *transcription.Manager
	separator separation.Provider // nil disables vocal isolation
	log       *logger.Logger
}

// New creates a Pipeline. separator may be nil to disable vocal isolation.
func New(cfg Config, models *transcription.Manager, separator separation.Provider, log *logger.Logger) *Pipeline {
	cfg.ApplyDefaults()
	return &Pipeline{
		cfg:       cfg,
		models:    models,
		separator: separator,
		log:       log.WithComponent("pipeline"),
	}
}

// Models exposes the model manager for health reporting.
func (p *Pipeline) Models() *transcription.Manager {
	return p.models
}

type outcome struct {
	result *transcription.TranscriptResult
	err    error
}

// Process converts uploaded audio bytes into a transcript. The heavy work
// runs on a worker goroutine so the request-dispatch layer stays responsive;
// the caller awaits a single result. Temporary files are removed in the
// worker's defers, which run on every exit path including caller
// abandonment, so an aborted wait never leaks scratch artifacts.
func (p *Pipeline) Process(ctx context.Context, audio []byte, contentType string) (*transcription.TranscriptResult, error) {
	scratchCtx, span := observability.StartSpan(ctx, observability.SpanScratch)
	observability.SetSpanAttribute(scratchCtx, observability.AttrAudioBytes, len(audio))

	scratchPath, err := writeScratch(p.cfg.ScratchDir, audio, contentType)
	span.End()
	if err != nil {
		p.log.Error("scratch write failed", logger.ErrorFields("scratch", err))
		return nil, errors.TranscriptionFailed(err)
	}

	ch := make(chan outcome, 1)
	go p.run(ctx, scratchPath, ch)

	select {
	case out := <-ch:
		return out.result, out.err
	case <-ctx.Done():
		// The worker keeps running and cleans up its own files.
		return nil, errors.Timeout("transcription").WithCause(ctx.Err())
	}
}

// run executes isolation, transcription, and assembly, then reports exactly
// one outcome. Cleanup is registered before each stage so every temporary
// file is deleted no matter which stage fails.
func (p *Pipeline) run(ctx context.Context, scratchPath string, ch chan<- outcome) {
	defer p.removeFile(scratchPath)

	isoCtx, isoSpan := observability.StartSpan(ctx, observability.SpanIsolate)
	iso := separation.Isolate(isoCtx, p.separator, p.log, scratchPath)
	observability.SetSpanAttribute(isoCtx, observability.AttrIsolated, !iso.Skipped)
	if iso.Skipped {
		observability.SetSpanAttribute(isoCtx, observability.AttrSkipReason, iso.Reason)
	}
	isoSpan.End()

	if iso.VocalsPath != "" {
		defer p.removeFile(iso.VocalsPath)
	}

	initCtx, initSpan := observability.StartSpan(ctx, observability.SpanModelInit)
	model, err := p.models.Acquire(initCtx)
	if err != nil {
		observability.SetSpanError(initCtx, err)
		initSpan.End()
		p.log.Error("model acquisition failed", logger.ErrorFields("acquire", err))
		ch <- outcome{err: err}
		return
	}
	initSpan.End()

	txCtx, txSpan := observability.StartSpan(ctx, observability.SpanTranscribe)
	observability.SetSpanAttribute(txCtx, observability.AttrAudioPath, iso.AudioPath)
	resp, err := model.Transcribe(txCtx, transcription.Request{AudioPath: iso.AudioPath})
	if err != nil {
		observability.SetSpanError(txCtx, err)
		txSpan.End()
		p.log.Error("transcription failed", logger.ErrorFields("transcribe", err))
		ch <- outcome{err: errors.TranscriptionFailed(err)}
		return
	}
	txSpan.End()

	asmCtx, asmSpan := observability.StartSpan(ctx, observability.SpanAssemble)
	result := transcription.Assemble(resp.Segments)
	observability.SetSpanAttribute(asmCtx, observability.AttrChunkCount, len(result.Chunks))
	asmSpan.End()

	p.log.Info("transcription complete", logger.Fields(
		"chunks", len(result.Chunks),
		"isolated", !iso.Skipped,
	))
	ch <- outcome{result: result}
}

// removeFile deletes a temporary artifact. Deletion failures are logged,
// never surfaced: cleanup must not mask the primary result or error.
func (p *Pipeline) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.log.Warn("temporary file cleanup failed", logger.Fields(
			logger.FieldPath, path,
			logger.FieldError, err.Error(),
		))
	}
}
