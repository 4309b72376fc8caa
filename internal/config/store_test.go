package config

import (
	"os"
	"path/filepath"
	"testing"

	"cloud-transcriber/internal/domain"
)

// TestLoadMissingFileReturnsDefaults checks first-launch behavior.
func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "settings.json"))

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != DefaultSettings() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

// TestSaveThenLoadRoundTrip verifies persisted settings survive a reload.
func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	store := NewJSONStore(path)

	want := domain.Settings{
		OutputDir:          "/tmp/transcripts",
		PromptsPath:        "/tmp/prompts.json",
		TranscriptionModel: "gpt-4o-transcribe",
		SummaryModel:       "gpt-4o",
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

// TestLoadFillsMissingFields checks older partial files gain defaults.
func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"outputDir":"/data/out"}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	cfg, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OutputDir != "/data/out" {
		t.Fatalf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.PromptsPath != "prompts.json" {
		t.Fatalf("PromptsPath = %q, want default", cfg.PromptsPath)
	}
	if cfg.TranscriptionModel != DefaultTranscriptionModel || cfg.SummaryModel != DefaultSummaryModel {
		t.Fatalf("models = %q/%q, want defaults", cfg.TranscriptionModel, cfg.SummaryModel)
	}
}

// TestLoadCorruptFileFails verifies invalid JSON is surfaced, not masked.
func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	if _, err := NewJSONStore(path).Load(); err == nil {
		t.Fatal("Load() should fail on corrupt settings file")
	}
}
