package transcription

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// Model overrides the backend's configured model identifier.
	Model string `json:"model,omitempty"`
	// Language overrides the backend's configured language.
	Language string `json:"language,omitempty"`
}

// Response holds the raw result of a transcription call, fully
// materialized. Backends must drain any streamed segment sequence into
// Segments before returning, since the underlying model may only produce
// segments while its resources remain held.
type Response struct {
	// Segments contains time-aligned transcript segments in order.
	Segments []Segment `json:"segments"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Language is the detected or specified language.
	Language string `json:"language,omitempty"`
}

// Segment represents a time-aligned portion of a transcript as produced
// by the model. Consumed once by Assemble; not retained.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
	// Words contains per-token alignment, if the model emitted it.
	Words []SegmentWord `json:"words,omitempty"`
}

// SegmentWord is a token with its own start/end time and surface text.
type SegmentWord struct {
	// Start is the word start time in seconds.
	Start float64 `json:"start"`
	// End is the word end time in seconds.
	End float64 `json:"end"`
	// Word is the token's surface text.
	Word string `json:"word"`
}

// Chunk is one unit of the aligned transcript in the public schema:
// a text span with start/end bounds and optional word-level timing.
// Timestamps are rounded to 2 decimal places.
type Chunk struct {
	Text      string     `json:"text"`
	Timestamp [2]float64 `json:"timestamp"`
	// Words is present only if the source segment yielded any.
	Words []WordTiming `json:"words,omitempty"`
}

// WordTiming is the public word-level entry of a Chunk.
type WordTiming struct {
	Word      string     `json:"word"`
	Timestamp [2]float64 `json:"timestamp"`
}

// TranscriptResult is the public transcription payload: the full text plus
// the ordered chunk sequence a front-end can scroll in sync with playback.
type TranscriptResult struct {
	// Text is the chunk texts joined by single spaces, in chunk order.
	Text string `json:"text"`
	// Chunks is the ordered sequence of aligned transcript chunks.
	Chunks []Chunk `json:"chunks"`
}
