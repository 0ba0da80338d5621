// Package demucs implements separation.Provider using a demucs HTTP sidecar.
package demucs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/skillsenselab/lyricsync/provider"
	"github.com/skillsenselab/lyricsync/separation"
	"github.com/skillsenselab/lyricsync/validation"
)

const (
	// ProviderName is the registered name for the Demucs provider.
	ProviderName = "demucs"

	defaultDemucsURL     = "http://localhost:8388"
	defaultDemucsStem    = "vocals"
	defaultDemucsTimeout = 300 * time.Second
)

// Config holds configuration for the Demucs separation provider.
type Config struct {
	Enabled bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	BaseURL string        `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Stem    string        `json:"stem,omitempty" yaml:"stem" mapstructure:"stem" validate:"omitempty,oneof=vocals drums bass other"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"min=0"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultDemucsURL
	}
	if c.Stem == "" {
		c.Stem = defaultDemucsStem
	}
	if c.Timeout == 0 {
		c.Timeout = defaultDemucsTimeout
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Provider implements separation.Provider using the Demucs HTTP sidecar.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Demucs separation provider.
func NewProvider(cfg Config) *Provider {
	cfg.ApplyDefaults()
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Factory returns a provider.Factory that creates Demucs Provider
// instances from a generic config map.
func Factory() provider.Factory[separation.Provider] {
	return func(cfg map[string]any) (separation.Provider, error) {
		dc := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			dc.BaseURL = v
		}
		if v, ok := cfg["stem"].(string); ok {
			dc.Stem = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			dc.Timeout = v
		}
		if err := dc.Validate(); err != nil {
			return nil, err
		}
		return NewProvider(dc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Demucs sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Separate sends audio to the Demucs sidecar and returns the extracted stem
// waveform.
func (p *Provider) Separate(ctx context.Context, req separation.SeparationRequest) (*separation.SeparationResponse, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	stem := p.cfg.Stem
	if req.Stem != "" {
		stem = req.Stem
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

	_ = writer.WriteField("stem", stem)
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/separate", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("separation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("separation error (status %d): %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read separation output: %w", err)
	}

	return &separation.SeparationResponse{
		Audio: audio,
		Stem:  stem,
	}, nil
}

// compile-time check
var _ separation.Provider = (*Provider)(nil)
