package transcription

import (
	"math"
	"strings"
)

// Assemble maps raw model segments into the public chunk schema. Segment and
// word text is whitespace-trimmed, timestamps are rounded to 2 decimal
// places, and word lists are omitted entirely for word-less segments. The
// overall text is the chunk texts joined by single spaces, in chunk order.
func Assemble(segments []Segment) *TranscriptResult {
	chunks := make([]Chunk, 0, len(segments))
	texts := make([]string, 0, len(segments))

	for _, seg := range segments {
		chunk := Chunk{
			Text:      strings.TrimSpace(seg.Text),
			Timestamp: [2]float64{round2(seg.Start), round2(seg.End)},
		}
		if len(seg.Words) > 0 {
			chunk.Words = make([]WordTiming, 0, len(seg.Words))
			for _, w := range seg.Words {
				chunk.Words = append(chunk.Words, WordTiming{
					Word:      strings.TrimSpace(w.Word),
					Timestamp: [2]float64{round2(w.Start), round2(w.End)},
				})
			}
		}
		chunks = append(chunks, chunk)
		texts = append(texts, chunk.Text)
	}

	return &TranscriptResult{
		Text:   strings.Join(texts, " "),
		Chunks: chunks,
	}
}

// round2 rounds seconds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
