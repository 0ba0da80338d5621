// Package separation defines the source-separation provider interface and
// the best-effort vocal isolation stage.
package separation

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillsenselab/lyricsync/logger"
	"github.com/skillsenselab/lyricsync/provider"
)

// Provider is the interface that source-separation backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Separate extracts a single stem from the audio at req.AudioPath and
	// returns its waveform.
	Separate(ctx context.Context, req SeparationRequest) (*SeparationResponse, error)
}

// SeparationRequest holds parameters for a separation call.
type SeparationRequest struct {
	// AudioPath is the path to the audio file to separate.
	AudioPath string `json:"audio_path"`
	// Stem is the stem to extract (e.g. "vocals").
	Stem string `json:"stem"`
}

// SeparationResponse holds the result of a separation call.
type SeparationResponse struct {
	// Audio is the extracted stem waveform (WAV bytes).
	Audio []byte
	// Stem is the stem that was extracted.
	Stem string
}

// NewRegistry creates a new provider registry for separation providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// Result is the explicit outcome of the isolation stage: either an isolated
// vocals file or a skip with the original audio passed through. Modeling the
// fallback as a branch type keeps it a testable path rather than incidental
// error handling.
type Result struct {
	// AudioPath is the path transcription should consume: the vocals file
	// on success, the untouched input on skip.
	AudioPath string
	// VocalsPath is the derived artifact the caller must delete after use.
	// Empty when isolation was skipped.
	VocalsPath string
	// Skipped reports that isolation did not run or did not succeed.
	Skipped bool
	// Reason explains a skip. Empty on success.
	Reason string
}

// Isolate attempts to extract a vocals-only derivative of inputPath, writing
// it into the same directory as the input. It never fails the request: on
// any error it logs a warning and returns the original audio unmodified.
func Isolate(ctx context.Context, p Provider, log *logger.Logger, inputPath string) Result {
	if p == nil {
		return skip(inputPath, "separation disabled")
	}

	resp, err := p.Separate(ctx, SeparationRequest{
		AudioPath: inputPath,
		Stem:      "vocals",
	})
	if err != nil {
		log.Warn("vocal isolation failed, using original audio", logger.ErrorFields("separate", err))
		return skip(inputPath, err.Error())
	}
	if len(resp.Audio) == 0 {
		log.Warn("vocal isolation produced no output, using original audio")
		return skip(inputPath, "empty separation output")
	}

	vocalsPath := vocalsFilePath(inputPath)
	if err := os.WriteFile(vocalsPath, resp.Audio, 0o600); err != nil {
		log.Warn("writing isolated vocals failed, using original audio", logger.ErrorFields("write", err))
		return skip(inputPath, err.Error())
	}

	log.Debug("vocals isolated", logger.Fields(logger.FieldPath, vocalsPath))
	return Result{
		AudioPath:  vocalsPath,
		VocalsPath: vocalsPath,
	}
}

func skip(inputPath, reason string) Result {
	return Result{
		AudioPath: inputPath,
		Skipped:   true,
		Reason:    reason,
	}
}

// vocalsFilePath derives the output path next to the input file.
func vocalsFilePath(inputPath string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return base + ".vocals.wav"
}
