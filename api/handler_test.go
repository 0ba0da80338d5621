package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/lyricsync/logger"
	"github.com/skillsenselab/lyricsync/pipeline"
	"github.com/skillsenselab/lyricsync/transcription"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeProvider returns a canned transcription for any input.
type fakeProvider struct {
	segments []transcription.Segment
	err      error
}

func (f *fakeProvider) Name() string                        { return "fake" }
func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeProvider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &transcription.Response{Segments: f.segments}, nil
}

func newTestRouter(t *testing.T, p transcription.Provider) *gin.Engine {
	t.Helper()
	log := logger.NewDefault("test")
	manager := transcription.NewManager(func(ctx context.Context) (transcription.Provider, error) {
		return p, nil
	}, log)

	cfg := pipeline.Config{ScratchDir: t.TempDir()}
	cfg.ApplyDefaults()
	pipe := pipeline.New(cfg, manager, nil, log)

	r := gin.New()
	NewHandler(pipe, log).Register(r)
	return r
}

func multipartAudio(t *testing.T, field, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename="song.mp3"`, field)}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

// ============================================================================
// POST /ai/stt
// ============================================================================

func TestSpeechToTextSuccess(t *testing.T) {
	p := &fakeProvider{segments: []transcription.Segment{
		{Start: 0, End: 1.5, Text: " hello world", Words: []transcription.SegmentWord{
			{Start: 0, End: 0.7, Word: "hello"},
			{Start: 0.8, End: 1.5, Word: "world"},
		}},
	}}
	r := newTestRouter(t, p)

	body, contentType := multipartAudio(t, "audio", "audio/mpeg", []byte("fake-mp3-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/ai/stt", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Result transcription.TranscriptResult `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Result.Text != "hello world" {
		t.Errorf("text = %q, want %q", resp.Result.Text, "hello world")
	}
	if len(resp.Result.Chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(resp.Result.Chunks))
	}
	if got := resp.Result.Chunks[0].Timestamp; got != [2]float64{0, 1.5} {
		t.Errorf("timestamp = %v", got)
	}
	if len(resp.Result.Chunks[0].Words) != 2 {
		t.Errorf("words = %d, want 2", len(resp.Result.Chunks[0].Words))
	}
}

func TestSpeechToTextRejectsNonAudio(t *testing.T) {
	r := newTestRouter(t, &fakeProvider{})

	body, contentType := multipartAudio(t, "audio", "text/plain", []byte("not audio"))
	req := httptest.NewRequest(http.MethodPost, "/ai/stt", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["detail"] != "Invalid file type. Please upload an audio file." {
		t.Errorf("detail = %q", resp["detail"])
	}
}

func TestSpeechToTextMissingFile(t *testing.T) {
	r := newTestRouter(t, &fakeProvider{})

	req := httptest.NewRequest(http.MethodPost, "/ai/stt", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSpeechToTextProviderFailure(t *testing.T) {
	r := newTestRouter(t, &fakeProvider{err: fmt.Errorf("sidecar exploded")})

	body, contentType := multipartAudio(t, "audio", "audio/wav", []byte("wav-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/ai/stt", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.HasPrefix(resp["detail"], "Speech-to-text processing failed:") {
		t.Errorf("detail = %q", resp["detail"])
	}
}

// ============================================================================
// POST /ai/translate
// ============================================================================

func TestTranslateNotImplemented(t *testing.T) {
	r := newTestRouter(t, &fakeProvider{})

	req := httptest.NewRequest(http.MethodPost, "/ai/translate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", w.Code)
	}
	if !strings.Contains(w.Body.String(), "detail") {
		t.Errorf("body = %q", w.Body.String())
	}
}
