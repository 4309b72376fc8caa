package transcribe

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud-transcriber/internal/domain"
)

// fakeTranscriber simulates the speech-to-text collaborator.
type fakeTranscriber struct {
	calls    int
	lastName string
	record   domain.TranscriptionRecord
	err      error
}

// Transcribe drains the audio stream and returns the scripted record.
func (f *fakeTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename, model string) (domain.TranscriptionRecord, error) {
	f.calls++
	f.lastName = filename
	_, _ = io.Copy(io.Discard, audio)
	return f.record, f.err
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 25, 10, 15, 0, 0, time.UTC)
}

func testPipeline(t *testing.T, outputDir string, transcriber *fakeTranscriber, completer *fakeCompleter) *Pipeline {
	t.Helper()
	cfg := Config{
		APIKey:             "sk-test",
		OutputDir:          outputDir,
		TranscriptionModel: "whisper-1",
		SummaryModel:       "gpt-4o-mini",
	}
	return NewPipelineForTests(cfg, transcriber, completer, fixedNow, os.Stat, func(name string) (io.ReadCloser, error) {
		return os.Open(name)
	})
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var pipelineErr *PipelineError
	if !errors.As(err, &pipelineErr) {
		t.Fatalf("error = %v, want *PipelineError", err)
	}
	return pipelineErr.Kind
}

// TestPipelineRunTranscriptionOnly checks the happy path without a summary.
func TestPipelineRunTranscriptionOnly(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "meeting.mp3")
	outputDir := filepath.Join(root, "out")
	mustWriteFile(t, inputPath, "audio-bytes")

	transcriber := &fakeTranscriber{record: domain.TranscriptionRecord{
		Text: " Hello World ",
		Segments: []domain.Segment{
			{Start: 0, End: 1.5, Text: "Hello"},
			{Start: 3, End: 4.25, Text: "World"},
		},
	}}
	completer := &fakeCompleter{output: "unused"}
	var stages []domain.JobStatus

	pipeline := testPipeline(t, outputDir, transcriber, completer)
	result, err := pipeline.Run(context.Background(), Request{
		InputPath: inputPath,
		OnStage:   func(stage domain.JobStatus) { stages = append(stages, stage) },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if transcriber.calls != 1 || transcriber.lastName != "meeting.mp3" {
		t.Fatalf("transcriber calls = %d name = %q", transcriber.calls, transcriber.lastName)
	}
	if completer.lastPrompt != "" {
		t.Fatal("completer should not be called without summarize")
	}
	if result.Status != "Transcription complete." {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Transcript != "Hello World" {
		t.Fatalf("transcript = %q", result.Transcript)
	}
	if result.SummaryPath != "" || result.Summary != "" {
		t.Fatalf("unexpected summary in result: %+v", result)
	}

	wantBase := filepath.Join(outputDir, "meeting-20260825-101500")
	if result.TextPath != wantBase+".txt" || result.CaptionPath != wantBase+".srt" || result.RecordPath != wantBase+".json" {
		t.Fatalf("unexpected artifact paths: %+v", result)
	}
	for _, path := range []string{result.TextPath, result.CaptionPath, result.RecordPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("artifact missing %s: %v", path, err)
		}
	}

	wantStages := []domain.JobStatus{
		domain.JobStatusValidating,
		domain.JobStatusTranscribing,
		domain.JobStatusWritingArtifacts,
	}
	if len(stages) != len(wantStages) {
		t.Fatalf("stages = %v", stages)
	}
	for i, stage := range wantStages {
		if stages[i] != stage {
			t.Fatalf("stage[%d] = %s, want %s", i, stages[i], stage)
		}
	}
}

// TestPipelineRunWithSummary checks the full path including the summary file.
func TestPipelineRunWithSummary(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "standup.wav")
	outputDir := filepath.Join(root, "out")
	mustWriteFile(t, inputPath, "audio-bytes")

	transcriber := &fakeTranscriber{record: domain.TranscriptionRecord{Text: "we shipped the release"}}
	completer := &fakeCompleter{output: "  - release shipped\n"}

	pipeline := testPipeline(t, outputDir, transcriber, completer)
	result, err := pipeline.Run(context.Background(), Request{
		InputPath:      inputPath,
		Summarize:      true,
		PromptTemplate: "Summarize briefly.\n{transcript}",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Status != "Transcription and summary complete." {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Summary != "- release shipped" {
		t.Fatalf("summary = %q", result.Summary)
	}
	if completer.lastPrompt != "Summarize briefly.\nwe shipped the release" {
		t.Fatalf("prompt = %q", completer.lastPrompt)
	}

	wantPath := filepath.Join(outputDir, "standup-20260825-101500-summary.txt")
	if result.SummaryPath != wantPath {
		t.Fatalf("summary path = %q, want %q", result.SummaryPath, wantPath)
	}
	content, err := os.ReadFile(result.SummaryPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if string(content) != "- release shipped\n" {
		t.Fatalf("summary file = %q", content)
	}
}

// TestPipelineEmptyInputPathFailsValidation checks the missing-path guard.
func TestPipelineEmptyInputPathFailsValidation(t *testing.T) {
	transcriber := &fakeTranscriber{}
	pipeline := testPipeline(t, filepath.Join(t.TempDir(), "out"), transcriber, &fakeCompleter{})

	_, err := pipeline.Run(context.Background(), Request{InputPath: "   "})
	if kindOf(t, err) != KindValidation {
		t.Fatalf("kind = %s, want validation", kindOf(t, err))
	}
	if transcriber.calls != 0 {
		t.Fatal("transcriber should not be called")
	}
}

// TestPipelineNonexistentInputFailsValidation verifies no side effects occur
// before validation passes.
func TestPipelineNonexistentInputFailsValidation(t *testing.T) {
	root := t.TempDir()
	outputDir := filepath.Join(root, "out")
	transcriber := &fakeTranscriber{}
	completer := &fakeCompleter{}

	pipeline := testPipeline(t, outputDir, transcriber, completer)
	_, err := pipeline.Run(context.Background(), Request{InputPath: filepath.Join(root, "missing.mp3")})

	if kindOf(t, err) != KindValidation {
		t.Fatalf("kind = %s, want validation", kindOf(t, err))
	}
	if transcriber.calls != 0 || completer.lastPrompt != "" {
		t.Fatal("no collaborator should be called")
	}
	if _, statErr := os.Stat(outputDir); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("output dir should not exist, stat err = %v", statErr)
	}
}

// TestPipelineMissingCredentialFailsConfiguration checks the injected-key guard.
func TestPipelineMissingCredentialFailsConfiguration(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "a.mp3")
	mustWriteFile(t, inputPath, "audio")

	cfg := Config{OutputDir: filepath.Join(root, "out"), TranscriptionModel: "whisper-1"}
	pipeline := NewPipelineForTests(cfg, &fakeTranscriber{}, &fakeCompleter{}, fixedNow, os.Stat, func(name string) (io.ReadCloser, error) {
		return os.Open(name)
	})

	_, err := pipeline.Run(context.Background(), Request{InputPath: inputPath})
	if kindOf(t, err) != KindConfiguration {
		t.Fatalf("kind = %s, want configuration", kindOf(t, err))
	}
}

// TestPipelineBlankPromptFailsAfterArtifactsWritten verifies the documented
// ordering: transcript artifacts are on disk before the blank-prompt check,
// and the completion collaborator is never invoked.
func TestPipelineBlankPromptFailsAfterArtifactsWritten(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "call.mp3")
	outputDir := filepath.Join(root, "out")
	mustWriteFile(t, inputPath, "audio")

	transcriber := &fakeTranscriber{record: domain.TranscriptionRecord{Text: "hello"}}
	completer := &fakeCompleter{output: "unused"}

	pipeline := testPipeline(t, outputDir, transcriber, completer)
	_, err := pipeline.Run(context.Background(), Request{
		InputPath:      inputPath,
		Summarize:      true,
		PromptTemplate: "   ",
	})

	if kindOf(t, err) != KindValidation {
		t.Fatalf("kind = %s, want validation", kindOf(t, err))
	}
	if completer.lastPrompt != "" {
		t.Fatal("completion collaborator should not be called")
	}

	base := filepath.Join(outputDir, "call-20260825-101500")
	for _, path := range []string{base + ".txt", base + ".srt", base + ".json"} {
		if _, statErr := os.Stat(path); statErr != nil {
			t.Fatalf("artifact %s should exist despite the failure: %v", path, statErr)
		}
	}
	if _, statErr := os.Stat(base + "-summary.txt"); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("summary file should not exist, stat err = %v", statErr)
	}
}

// TestPipelineTranscriptionErrorSurfacesAsCollaborator checks error mapping.
func TestPipelineTranscriptionErrorSurfacesAsCollaborator(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "a.mp3")
	mustWriteFile(t, inputPath, "audio")

	wantErr := errors.New("quota exceeded")
	transcriber := &fakeTranscriber{err: wantErr}

	pipeline := testPipeline(t, filepath.Join(root, "out"), transcriber, &fakeCompleter{})
	_, err := pipeline.Run(context.Background(), Request{InputPath: inputPath})

	if kindOf(t, err) != KindCollaborator {
		t.Fatalf("kind = %s, want collaborator", kindOf(t, err))
	}
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped %v", err, wantErr)
	}
}

// TestPipelineSameSecondRunOverwrites asserts the documented same-second
// collision behavior: the second run silently replaces the first's files.
func TestPipelineSameSecondRunOverwrites(t *testing.T) {
	root := t.TempDir()
	inputPath := filepath.Join(root, "repeat.mp3")
	outputDir := filepath.Join(root, "out")
	mustWriteFile(t, inputPath, "audio")

	transcriber := &fakeTranscriber{record: domain.TranscriptionRecord{Text: "first run"}}
	pipeline := testPipeline(t, outputDir, transcriber, &fakeCompleter{})

	first, err := pipeline.Run(context.Background(), Request{InputPath: inputPath})
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	transcriber.record = domain.TranscriptionRecord{Text: "second run"}
	second, err := pipeline.Run(context.Background(), Request{InputPath: inputPath})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if first.TextPath != second.TextPath {
		t.Fatalf("paths differ: %q vs %q", first.TextPath, second.TextPath)
	}
	content, err := os.ReadFile(second.TextPath)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(content) != "second run\n" {
		t.Fatalf("transcript = %q, want second run's content", content)
	}
}
