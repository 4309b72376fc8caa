package domain

// ModelKind separates transcription models from summary models in the catalog.
type ModelKind string

const (
	ModelKindTranscription ModelKind = "transcription"
	ModelKindSummary       ModelKind = "summary"
)

// ModelOption describes one selectable cloud model identifier.
type ModelOption struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        ModelKind `json:"kind"`
	Description string    `json:"description,omitempty"`
	Default     bool      `json:"default"`
}
