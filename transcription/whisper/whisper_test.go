package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skillsenselab/lyricsync/logger"
	"github.com/skillsenselab/lyricsync/transcription"
)

// fakeSidecar mimics the Whisper sidecar's HTTP surface.
type fakeSidecar struct {
	cudaAvailable bool

	loadReq       loadRequest
	transcribeReq map[string]string
	response      whisperResponse
}

func (f *fakeSidecar) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(healthResponse{Status: "ok", CUDAAvailable: f.cudaAvailable})
	})
	mux.HandleFunc("/load", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&f.loadReq); err != nil {
			t.Errorf("decode load request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		f.transcribeReq = map[string]string{}
		for key := range r.MultipartForm.Value {
			f.transcribeReq[key] = r.FormValue(key)
		}
		json.NewEncoder(w).Encode(f.response)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(t *testing.T, srv *httptest.Server, cfg Config) *Provider {
	t.Helper()
	cfg.URL = srv.URL
	return NewProvider(cfg, logger.NewDefault("test"))
}

func writeAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("fake-audio"), 0o600); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

// ============================================================================
// LoadModel
// ============================================================================

func TestLoadModelResolvesCUDA(t *testing.T) {
	sidecar := &fakeSidecar{cudaAvailable: true}
	p := newProvider(t, sidecar.server(t), Config{Model: "base"})

	if err := p.LoadModel(context.Background()); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if p.Device() != "cuda" {
		t.Errorf("device = %q, want cuda", p.Device())
	}
	if p.ComputeType() != "float16" {
		t.Errorf("compute type = %q, want float16", p.ComputeType())
	}
	if sidecar.loadReq.Model != "base" {
		t.Errorf("load request model = %q", sidecar.loadReq.Model)
	}
	if sidecar.loadReq.Device != "cuda" || sidecar.loadReq.ComputeType != "float16" {
		t.Errorf("load request runtime = %s/%s", sidecar.loadReq.Device, sidecar.loadReq.ComputeType)
	}
}

func TestLoadModelResolvesCPU(t *testing.T) {
	sidecar := &fakeSidecar{cudaAvailable: false}
	p := newProvider(t, sidecar.server(t), Config{})

	if err := p.LoadModel(context.Background()); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if p.Device() != "cpu" {
		t.Errorf("device = %q, want cpu", p.Device())
	}
	if p.ComputeType() != "int8" {
		t.Errorf("compute type = %q, want int8", p.ComputeType())
	}
}

func TestLoadModelExplicitRuntimeWins(t *testing.T) {
	sidecar := &fakeSidecar{cudaAvailable: true}
	p := newProvider(t, sidecar.server(t), Config{Device: "cpu", ComputeType: "int8"})

	if err := p.LoadModel(context.Background()); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if p.Device() != "cpu" || p.ComputeType() != "int8" {
		t.Errorf("runtime = %s/%s, want cpu/int8", p.Device(), p.ComputeType())
	}
}

func TestLoadModelSidecarDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately unreachable
	p := NewProvider(Config{URL: srv.URL}, logger.NewDefault("test"))

	if err := p.LoadModel(context.Background()); err == nil {
		t.Fatal("expected error for unreachable sidecar")
	}
}

// ============================================================================
// Transcribe
// ============================================================================

func TestTranscribeSendsDecodingParams(t *testing.T) {
	sidecar := &fakeSidecar{response: whisperResponse{
		Segments: []whisperSegment{{Text: " hello", Start: 0, End: 1}},
	}}
	p := newProvider(t, sidecar.server(t), Config{Model: "base", Language: "en"})

	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudioFile(t)})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	want := map[string]string{
		"model":           "base",
		"language":        "en",
		"beam_size":       "5",
		"word_timestamps": "true",
		"vad_filter":      "false",
	}
	for key, val := range want {
		if got := sidecar.transcribeReq[key]; got != val {
			t.Errorf("field %s = %q, want %q", key, got, val)
		}
	}
}

func TestTranscribeMapsSegmentsAndWords(t *testing.T) {
	sidecar := &fakeSidecar{response: whisperResponse{
		Language: "en",
		Segments: []whisperSegment{
			{Text: " hello world", Start: 0.5, End: 2.25, Words: []whisperWord{
				{Word: " hello", Start: 0.5, End: 1.1},
				{Word: " world", Start: 1.2, End: 2.25},
			}},
		},
	}}
	p := newProvider(t, sidecar.server(t), Config{})

	resp, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudioFile(t)})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(resp.Segments) != 1 {
		t.Fatalf("segments = %d", len(resp.Segments))
	}
	seg := resp.Segments[0]
	if seg.Start != 0.5 || seg.End != 2.25 {
		t.Errorf("segment bounds = %v-%v", seg.Start, seg.End)
	}
	if len(seg.Words) != 2 {
		t.Fatalf("words = %d", len(seg.Words))
	}
	if seg.Words[1].Word != " world" {
		t.Errorf("word = %q", seg.Words[1].Word)
	}
	// Without an explicit duration the last segment end is used.
	if resp.Duration != 2.25 {
		t.Errorf("duration = %v", resp.Duration)
	}
}

func TestTranscribeSidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	p := NewProvider(Config{URL: srv.URL}, logger.NewDefault("test"))

	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudioFile(t)})
	if err == nil {
		t.Fatal("expected error from failing sidecar")
	}
}

func TestTranscribeMissingAudioFile(t *testing.T) {
	sidecar := &fakeSidecar{}
	p := newProvider(t, sidecar.server(t), Config{})

	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: "/does/not/exist.mp3"})
	if err == nil {
		t.Fatal("expected error for missing audio file")
	}
}

// ============================================================================
// Config
// ============================================================================

func TestFactoryBuildsFromConfigMap(t *testing.T) {
	factory := Factory(logger.NewDefault("test"))
	p, err := factory(map[string]any{
		"url":    "http://localhost:9999",
		"model":  "small",
		"device": "cuda",
	})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if p.Name() != ProviderName {
		t.Errorf("name = %q", p.Name())
	}
}

func TestFactoryRejectsInvalidConfig(t *testing.T) {
	factory := Factory(logger.NewDefault("test"))
	if _, err := factory(map[string]any{"device": "tpu"}); err == nil {
		t.Fatal("expected validation error from factory")
	}
}

func TestConfigValidateRejectsBadDevice(t *testing.T) {
	cfg := Config{Device: "tpu"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for device")
	}
}

func TestConfigValidateReportsTaggedField(t *testing.T) {
	cfg := Config{Model: "base", ComputeType: "bf16"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for compute type")
	}
	if !strings.Contains(err.Error(), "compute_type: must be one of: auto int8 float16 float32") {
		t.Fatalf("unexpected error: %v", err)
	}
}
