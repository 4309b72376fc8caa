package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud-transcriber/internal/config"
	"cloud-transcriber/internal/domain"
)

// Checker validates the service credential and required filesystem paths.
type Checker struct {
	readFile   func(string) ([]byte, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		readFile:   os.ReadFile,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings, apiKey string) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkCredential(apiKey),
		c.checkOutputDir(settings.OutputDir),
		c.checkPromptLibrary(settings.PromptsPath),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkCredential verifies the OpenAI API key was supplied at startup.
func (c *Checker) checkCredential(apiKey string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "api_key",
		Name: "OpenAI API key",
	}

	if strings.TrimSpace(apiKey) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("%s is not set.", config.EnvAPIKey)
		item.Hint = "Export the environment variable and restart; transcription jobs fail validation without it."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "Credential is present."
	return item
}

// checkOutputDir validates output directory existence and write access.
func (c *Checker) checkOutputDir(outputDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "output_dir",
		Name: "Output directory",
	}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Output directory is empty."
		item.Hint = "Set an output directory where artifact files can be written."
		return item
	}

	if err := c.mkdirAll(outputDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create output directory: %s", outputDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(outputDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", outputDir)
		item.Hint = "Choose a writable directory for artifact export."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	return item
}

// checkPromptLibrary validates the prompt store parses when present.
// A missing file passes; it is seeded with defaults on first access.
func (c *Checker) checkPromptLibrary(promptsPath string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "prompt_library",
		Name: "Prompt library",
	}

	if strings.TrimSpace(promptsPath) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Prompt library path is empty."
		item.Hint = "Set a file path for the prompt library store."
		return item
	}

	data, err := c.readFile(promptsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			item.Status = domain.DiagnosticStatusPass
			item.Message = fmt.Sprintf("Will be created with default prompts: %s", promptsPath)
			return item
		}

		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot read prompt library: %s", promptsPath)
		item.Hint = "Check permissions for the prompt library file."
		return item
	}

	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Prompt library is not valid JSON: %s", promptsPath)
		item.Hint = "Fix or delete the file; a deleted file is re-seeded with defaults."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("%d prompts available.", len(templates))
	return item
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	readFile func(string) ([]byte, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		readFile:   readFile,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
