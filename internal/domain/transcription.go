package domain

// Segment is one timed span of recognized speech.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionRecord is the structured result of one speech-to-text call.
// It is serialized verbatim as the raw artifact and never mutated after
// the transcription service returns it.
type TranscriptionRecord struct {
	Task     string    `json:"task,omitempty"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}
