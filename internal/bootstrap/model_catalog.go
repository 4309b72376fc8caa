package bootstrap

import "cloud-transcriber/internal/domain"

// cloudModelCatalog lists the model identifiers the settings panel offers.
// The pipeline only ever receives whichever id the settings carry; defaults
// match the ids the service shipped with.
var cloudModelCatalog = []domain.ModelOption{
	{
		ID:          "whisper-1",
		Name:        "Whisper v2",
		Kind:        domain.ModelKindTranscription,
		Description: "General-purpose speech recognition with verbose segment output.",
		Default:     true,
	},
	{
		ID:          "gpt-4o-transcribe",
		Name:        "GPT-4o Transcribe",
		Kind:        domain.ModelKindTranscription,
		Description: "Higher-accuracy transcription for difficult audio.",
	},
	{
		ID:          "gpt-4o-mini-transcribe",
		Name:        "GPT-4o Mini Transcribe",
		Kind:        domain.ModelKindTranscription,
		Description: "Faster, lower-cost transcription.",
	},
	{
		ID:          "gpt-4o-mini",
		Name:        "GPT-4o Mini",
		Kind:        domain.ModelKindSummary,
		Description: "Fast, low-cost summaries.",
		Default:     true,
	},
	{
		ID:          "gpt-4o",
		Name:        "GPT-4o",
		Kind:        domain.ModelKindSummary,
		Description: "Higher-quality summaries for long transcripts.",
	},
}

// ModelCatalog returns a copy of the full model catalog.
func ModelCatalog() []domain.ModelOption {
	out := make([]domain.ModelOption, len(cloudModelCatalog))
	copy(out, cloudModelCatalog)
	return out
}

// ModelOptionsByKind filters the catalog for one model role.
func ModelOptionsByKind(kind domain.ModelKind) []domain.ModelOption {
	var out []domain.ModelOption
	for _, option := range cloudModelCatalog {
		if option.Kind == kind {
			out = append(out, option)
		}
	}
	return out
}

// DefaultModelID returns the default model id for one role, or empty when
// the catalog carries none.
func DefaultModelID(kind domain.ModelKind) string {
	for _, option := range cloudModelCatalog {
		if option.Kind == kind && option.Default {
			return option.ID
		}
	}
	return ""
}
