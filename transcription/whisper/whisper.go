package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/skillsenselab/lyricsync/logger"
	"github.com/skillsenselab/lyricsync/provider"
	"github.com/skillsenselab/lyricsync/transcription"
	"github.com/skillsenselab/lyricsync/validation"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "base"
	defaultWhisperTimeout = 300 * time.Second

	// Fixed invocation parameters: beam search width 5, word-level
	// timestamps on, VAD filtering off. Song vocals trip VAD heuristics,
	// so filtering stays disabled.
	beamSize = 5
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL         string        `json:"url" yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Model       string        `json:"model" yaml:"model" mapstructure:"model" validate:"required"`
	Language    string        `json:"language,omitempty" yaml:"language" mapstructure:"language"`
	Device      string        `json:"device,omitempty" yaml:"device" mapstructure:"device" validate:"omitempty,oneof=auto cpu cuda"`
	ComputeType string        `json:"compute_type,omitempty" yaml:"compute_type" mapstructure:"compute_type" validate:"omitempty,oneof=auto int8 float16 float32"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"min=0"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultWhisperURL
	}
	if c.Model == "" {
		c.Model = defaultWhisperModel
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Device == "" {
		c.Device = "auto"
	}
	if c.ComputeType == "" {
		c.ComputeType = "auto"
	}
	if c.Timeout == 0 {
		c.Timeout = defaultWhisperTimeout
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Provider implements transcription.Provider using a faster-whisper HTTP
// sidecar. LoadModel carries the expensive construction: it resolves the
// effective device and compute type against the sidecar's reported
// hardware and instructs the sidecar to load the configured model.
type Provider struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger

	device      string
	computeType string
}

// NewProvider creates a new Whisper transcription provider. The model is
// not loaded until LoadModel is called.
func NewProvider(cfg Config, log *logger.Logger) *Provider {
	cfg.ApplyDefaults()
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log.WithComponent("whisper"),
	}
}

// Factory returns a provider.Factory that creates Whisper Provider
// instances from a generic config map.
func Factory(log *logger.Logger) provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		wc := Config{}
		if v, ok := cfg["url"].(string); ok {
			wc.URL = v
		}
		if v, ok := cfg["model"].(string); ok {
			wc.Model = v
		}
		if v, ok := cfg["language"].(string); ok {
			wc.Language = v
		}
		if v, ok := cfg["device"].(string); ok {
			wc.Device = v
		}
		if v, ok := cfg["compute_type"].(string); ok {
			wc.ComputeType = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			wc.Timeout = v
		}
		if err := wc.Validate(); err != nil {
			return nil, err
		}
		return NewProvider(wc, log), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.health(ctx)
	return err == nil
}

// Device returns the effective device resolved by LoadModel.
func (p *Provider) Device() string { return p.device }

// ComputeType returns the effective compute type resolved by LoadModel.
func (p *Provider) ComputeType() string { return p.computeType }

// LoadModel resolves the effective device and compute type and instructs
// the sidecar to load the configured model. This takes seconds to minutes
// for large models; callers should go through transcription.Manager so it
// happens at most once per process.
func (p *Provider) LoadModel(ctx context.Context) error {
	h, err := p.health(ctx)
	if err != nil {
		return fmt.Errorf("whisper sidecar unreachable: %w", err)
	}

	p.device, p.computeType = resolveRuntime(p.cfg.Device, p.cfg.ComputeType, h.CUDAAvailable)

	body, err := json.Marshal(loadRequest{
		Model:       p.cfg.Model,
		Device:      p.device,
		ComputeType: p.computeType,
	})
	if err != nil {
		return fmt.Errorf("encode load request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/load", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create load request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("load model (status %d): %s", resp.StatusCode, string(msg))
	}

	p.log.Info("model loaded", logger.Fields(
		logger.FieldModel, p.cfg.Model,
		logger.FieldDevice, p.device,
		"compute_type", p.computeType,
	))
	return nil
}

// resolveRuntime maps the configured device/compute preferences to effective
// values: auto device picks cuda when the sidecar reports an accelerator,
// cpu otherwise; auto compute picks float16 on cuda and int8 on cpu.
func resolveRuntime(device, computeType string, cudaAvailable bool) (string, string) {
	if device == "auto" {
		if cudaAvailable {
			device = "cuda"
		} else {
			device = "cpu"
		}
	}
	if computeType == "auto" {
		if device == "cuda" {
			computeType = "float16"
		} else {
			computeType = "int8"
		}
	}
	return device, computeType
}

// Transcribe sends an audio file to the Whisper sidecar and returns the
// fully materialized transcription. Word-level timestamps are always
// requested; the language is pinned by configuration.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	_ = writer.WriteField("model", model)
	_ = writer.WriteField("language", lang)
	_ = writer.WriteField("beam_size", fmt.Sprintf("%d", beamSize))
	_ = writer.WriteField("word_timestamps", "true")
	_ = writer.WriteField("vad_filter", "false")
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, string(body))
	}

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	return toResponse(&result), nil
}

// health probes the sidecar and reports its hardware capability.
func (p *Provider) health(ctx context.Context) (*healthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check failed (status %d)", resp.StatusCode)
	}

	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &h, nil
}

// --- internal Whisper API types ---

type healthResponse struct {
	Status        string `json:"status"`
	CUDAAvailable bool   `json:"cuda_available"`
}

type loadRequest struct {
	Model       string `json:"model"`
	Device      string `json:"device"`
	ComputeType string `json:"compute_type"`
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

type whisperSegment struct {
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Words []whisperWord `json:"words"`
}

type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toResponse(resp *whisperResponse) *transcription.Response {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		s := transcription.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
		if len(seg.Words) > 0 {
			s.Words = make([]transcription.SegmentWord, len(seg.Words))
			for j, w := range seg.Words {
				s.Words[j] = transcription.SegmentWord{
					Start: w.Start,
					End:   w.End,
					Word:  w.Word,
				}
			}
		}
		segments[i] = s
	}

	duration := resp.Duration
	if duration == 0 && len(resp.Segments) > 0 {
		duration = resp.Segments[len(resp.Segments)-1].End
	}

	return &transcription.Response{
		Segments: segments,
		Duration: duration,
		Language: resp.Language,
	}
}

// compile-time check
var _ transcription.Provider = (*Provider)(nil)
