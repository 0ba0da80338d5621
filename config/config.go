package config

import (
	"fmt"

	"github.com/skillsenselab/lyricsync/logger"
	"github.com/skillsenselab/lyricsync/pipeline"
	"github.com/skillsenselab/lyricsync/separation/demucs"
	"github.com/skillsenselab/lyricsync/server"
	"github.com/skillsenselab/lyricsync/transcription/whisper"
	"github.com/skillsenselab/lyricsync/validation"
)

// ObservabilityConfig controls the optional OpenTelemetry tracer.
type ObservabilityConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// ApplyDefaults fills in zero-valued observability fields.
func (c *ObservabilityConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// Config is the full lyricsync service configuration. It aggregates the
// per-package configs so a single YAML file (plus environment overrides)
// describes the whole service.
type Config struct {
	Name          string              `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string              `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version       string              `yaml:"version" mapstructure:"version"`
	Debug         bool                `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Whisper       whisper.Config      `yaml:"whisper" mapstructure:"whisper"`
	Demucs        demucs.Config       `yaml:"demucs" mapstructure:"demucs"`
	Pipeline      pipeline.Config     `yaml:"pipeline" mapstructure:"pipeline"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies default values across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "lyricsync"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	if c.Debug && c.Logging.Level == "info" {
		c.Logging.Level = "debug"
	}
	c.Server.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.Demucs.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the configuration for invalid values. Struct-tag checks
// cover every section recursively; the logging section keeps its own check
// because valid levels come from zerolog, not from tags.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// Load reads the service configuration from config files and environment
// variables, applies defaults, and validates the result.
func Load(opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := LoadConfig("lyricsync", cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
