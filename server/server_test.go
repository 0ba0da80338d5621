package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/lyricsync/errors"
	"github.com/skillsenselab/lyricsync/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Port != 8386 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.MaxBodySize != "100MB" {
		t.Errorf("MaxBodySize = %q", cfg.MaxBodySize)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("CORS origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestRespondWithErrorAppError(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		RespondWithError(c, errors.Validation("Invalid file type. Please upload an audio file."))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["detail"] != "Invalid file type. Please upload an audio file." {
		t.Errorf("detail = %q", body["detail"])
	}
}

func TestRespondWithErrorOpaqueForUnknown(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		RespondWithError(c, fmt.Errorf("raw internal failure with secrets"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["detail"] == "" || body["detail"] == "raw internal failure with secrets" {
		t.Errorf("detail = %q, want opaque message", body["detail"])
	}
}

func TestRespondResultEnvelope(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		RespondResult(c, map[string]string{"text": "hello"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["result"]["text"] != "hello" {
		t.Errorf("body = %v", body)
	}
}

func TestApplyDefaultsRegistersEndpoints(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	srv := New(cfg, logger.NewDefault("test"))
	srv.ApplyDefaults("lyricsync", nil)

	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", w.Code)
	}
}

func TestEnableProfilingMountsHandlers(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	srv := New(cfg, logger.NewDefault("test"))
	srv.EnableProfiling()

	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("pprof index status = %d, want 200", w.Code)
	}
}
