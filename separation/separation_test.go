package separation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skillsenselab/lyricsync/logger"
)

type stubSeparator struct {
	audio []byte
	err   error
}

func (s *stubSeparator) Name() string                         { return "stub" }
func (s *stubSeparator) IsAvailable(ctx context.Context) bool { return true }
func (s *stubSeparator) Separate(ctx context.Context, req SeparationRequest) (*SeparationResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &SeparationResponse{Audio: s.audio, Stem: req.Stem}, nil
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.mp3")
	if err := os.WriteFile(path, []byte("mix"), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestIsolateWritesVocalsFile(t *testing.T) {
	input := writeInput(t)
	p := &stubSeparator{audio: []byte("vocals-wav")}

	result := Isolate(context.Background(), p, logger.NewDefault("test"), input)

	if result.Skipped {
		t.Fatalf("unexpected skip: %s", result.Reason)
	}
	if !strings.HasSuffix(result.VocalsPath, ".vocals.wav") {
		t.Errorf("vocals path = %q", result.VocalsPath)
	}
	if result.AudioPath != result.VocalsPath {
		t.Errorf("AudioPath = %q, want vocals path", result.AudioPath)
	}
	data, err := os.ReadFile(result.VocalsPath)
	if err != nil {
		t.Fatalf("read vocals: %v", err)
	}
	if string(data) != "vocals-wav" {
		t.Errorf("vocals content = %q", data)
	}
}

func TestIsolateNilProviderSkips(t *testing.T) {
	input := writeInput(t)

	result := Isolate(context.Background(), nil, logger.NewDefault("test"), input)

	if !result.Skipped {
		t.Fatal("expected skip with nil provider")
	}
	if result.AudioPath != input {
		t.Errorf("AudioPath = %q, want original input", result.AudioPath)
	}
	if result.VocalsPath != "" {
		t.Errorf("VocalsPath = %q, want empty", result.VocalsPath)
	}
}

func TestIsolateProviderErrorSkips(t *testing.T) {
	input := writeInput(t)
	p := &stubSeparator{err: fmt.Errorf("sidecar timeout")}

	result := Isolate(context.Background(), p, logger.NewDefault("test"), input)

	if !result.Skipped {
		t.Fatal("separation errors must not fail the request")
	}
	if result.AudioPath != input {
		t.Errorf("AudioPath = %q, want original input", result.AudioPath)
	}
	if result.Reason == "" {
		t.Error("skip should carry a reason")
	}
}

func TestIsolateEmptyOutputSkips(t *testing.T) {
	input := writeInput(t)
	p := &stubSeparator{audio: nil}

	result := Isolate(context.Background(), p, logger.NewDefault("test"), input)

	if !result.Skipped {
		t.Fatal("expected skip for empty separation output")
	}
	if result.AudioPath != input {
		t.Errorf("AudioPath = %q, want original input", result.AudioPath)
	}
}
