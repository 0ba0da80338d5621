package api

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/lyricsync/errors"
	"github.com/skillsenselab/lyricsync/logger"
	"github.com/skillsenselab/lyricsync/pipeline"
	"github.com/skillsenselab/lyricsync/server"
)

// Handler serves the /ai routes.
type Handler struct {
	pipeline *pipeline.Pipeline
	log      *logger.Logger
}

// NewHandler creates the API handler around the processing pipeline.
func NewHandler(p *pipeline.Pipeline, log *logger.Logger) *Handler {
	return &Handler{
		pipeline: p,
		log:      log.WithComponent("api"),
	}
}

// Register mounts the /ai route group on the Gin engine.
func (h *Handler) Register(r *gin.Engine) {
	ai := r.Group("/ai")
	ai.POST("/stt", h.SpeechToText)
	ai.POST("/translate", h.Translate)
}

// SpeechToText handles POST /ai/stt. The upload must arrive as a multipart
// form file named "audio" with an audio/* content type; the declared type is
// rejected before any file bytes are read.
func (h *Handler) SpeechToText(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		server.RespondWithError(c, errors.MissingField("audio").WithCause(err))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio") {
		server.RespondWithError(c, errors.Validation("Invalid file type. Please upload an audio file."))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		server.RespondWithError(c, errors.TranscriptionFailed(err))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		server.RespondWithError(c, errors.TranscriptionFailed(err))
		return
	}

	h.log.Info("Processing speech-to-text request", logger.Fields(
		"filename", fileHeader.Filename,
		"content_type", contentType,
		"bytes", len(audio),
	))

	result, err := h.pipeline.Process(c.Request.Context(), audio, contentType)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondResult(c, result)
}

// Translate handles POST /ai/translate. Lyric translation is not available
// yet; the route exists so clients get a stable 501 instead of a 404.
func (h *Handler) Translate(c *gin.Context) {
	server.RespondWithError(c, errors.NotImplemented("Translation is not implemented. Use an external translation service."))
}
