package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// extForContentType infers a file extension from the declared MIME type.
// Unknown audio types are accepted and defaulted, not rejected; mp3 is the
// fallback the decoder handles most leniently.
func extForContentType(contentType string) string {
	subtype := contentType
	if i := strings.Index(subtype, "/"); i >= 0 {
		subtype = subtype[i+1:]
	}
	if i := strings.Index(subtype, ";"); i >= 0 {
		subtype = subtype[:i]
	}

	switch strings.ToLower(strings.TrimSpace(subtype)) {
	case "wav", "x-wav", "wave":
		return "wav"
	case "flac", "x-flac":
		return "flac"
	case "ogg":
		return "ogg"
	case "webm":
		return "webm"
	case "m4a", "x-m4a", "mp4":
		return "m4a"
	default:
		return "mp3"
	}
}

// writeScratch persists the upload to a collision-resistant temporary file
// owned exclusively by the current request.
func writeScratch(dir string, audio []byte, contentType string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("%s.%s", uuid.New().String(), extForContentType(contentType))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	return path, nil
}
