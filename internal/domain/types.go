package domain

// JobStatus tracks each pipeline stage for a single transcription job.
type JobStatus string

const (
	JobStatusIdle             JobStatus = "idle"
	JobStatusValidating       JobStatus = "validating"
	JobStatusTranscribing     JobStatus = "transcribing"
	JobStatusWritingArtifacts JobStatus = "writing_artifacts"
	JobStatusSummarizing      JobStatus = "summarizing"
	JobStatusDone             JobStatus = "done"
	JobStatusFailed           JobStatus = "failed"
)

// Settings contains user-selectable runtime configuration.
type Settings struct {
	OutputDir          string `json:"outputDir"`
	PromptsPath        string `json:"promptsPath"`
	TranscriptionModel string `json:"transcriptionModel"`
	SummaryModel       string `json:"summaryModel"`
}

// Job stores the current job identity and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}
