package config

import "cloud-transcriber/internal/domain"

// Default cloud model identifiers used when settings leave them unset.
const (
	DefaultTranscriptionModel = "whisper-1"
	DefaultSummaryModel       = "gpt-4o-mini"
)

// EnvAPIKey is the environment variable supplying the OpenAI credential.
// Front ends read it once at startup and inject the value; nothing reads
// the environment at pipeline run time.
const EnvAPIKey = "OPENAI_API_KEY"

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		OutputDir:          "out",
		PromptsPath:        "prompts.json",
		TranscriptionModel: DefaultTranscriptionModel,
		SummaryModel:       DefaultSummaryModel,
	}
}

// applyDefaults fills empty settings fields with their defaults.
func applyDefaults(cfg domain.Settings) domain.Settings {
	def := DefaultSettings()
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.PromptsPath == "" {
		cfg.PromptsPath = def.PromptsPath
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = def.TranscriptionModel
	}
	if cfg.SummaryModel == "" {
		cfg.SummaryModel = def.SummaryModel
	}
	return cfg
}
