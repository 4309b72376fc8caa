package transcribe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud-transcriber/internal/domain"
)

// ErrorKind classifies pipeline failures for caller presentation.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConfiguration ErrorKind = "configuration"
	KindIO            ErrorKind = "io"
	KindCollaborator  ErrorKind = "collaborator"
)

// PipelineError is a stage-aware, kind-tagged error returned from Run.
// Callers branch on Kind to decide presentation; no failure is recovered
// inside the pipeline.
type PipelineError struct {
	Kind    ErrorKind        `json:"kind"`
	Stage   domain.JobStatus `json:"stage"`
	Message string           `json:"message"`
	Err     error            `json:"-"`
}

// Error formats pipeline failures for logs and UI.
func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Config carries the credential and run parameters. Front ends build it
// once at startup; the pipeline never reads ambient process state.
type Config struct {
	APIKey             string
	OutputDir          string
	TranscriptionModel string
	SummaryModel       string
}

// transcriptionClient is the speech-to-text collaborator.
type transcriptionClient interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, model string) (domain.TranscriptionRecord, error)
}

// Request contains the input audio and summarization choice for one run.
type Request struct {
	InputPath      string
	Summarize      bool
	PromptTemplate string
	OnStage        func(stage domain.JobStatus)
}

// Result contains the transcript, the optional summary, and artifact paths.
type Result struct {
	Transcript  string `json:"transcript"`
	Summary     string `json:"summary"`
	TextPath    string `json:"textPath"`
	RecordPath  string `json:"recordPath"`
	CaptionPath string `json:"captionPath"`
	SummaryPath string `json:"summaryPath,omitempty"`
	Status      string `json:"status"`
}

// Pipeline runs one audio file through transcription, artifact writing, and
// optional summarization. Runs are synchronous and never retried; artifacts
// written before a failure stay on disk.
type Pipeline struct {
	cfg         Config
	transcriber transcriptionClient
	completer   completionClient
	now         func() time.Time
	stat        func(name string) (os.FileInfo, error)
	openFile    func(name string) (io.ReadCloser, error)
}

// NewPipeline constructs the production pipeline with OS dependencies.
func NewPipeline(cfg Config, transcriber transcriptionClient, completer completionClient) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		transcriber: transcriber,
		completer:   completer,
		now:         time.Now,
		stat:        os.Stat,
		openFile: func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		},
	}
}

// Run performs validation, transcription, artifact writing, and optional
// summarization for one audio file.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	emitStage(req.OnStage, domain.JobStatusValidating)

	if strings.TrimSpace(req.InputPath) == "" {
		return Result{}, &PipelineError{
			Kind:    KindValidation,
			Stage:   domain.JobStatusValidating,
			Message: "input audio path is required",
		}
	}
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return Result{}, &PipelineError{
			Kind:    KindConfiguration,
			Stage:   domain.JobStatusValidating,
			Message: "OpenAI API key is not configured; set OPENAI_API_KEY",
		}
	}
	if _, err := p.stat(req.InputPath); err != nil {
		return Result{}, &PipelineError{
			Kind:    KindValidation,
			Stage:   domain.JobStatusValidating,
			Message: fmt.Sprintf("cannot access input audio file: %s", req.InputPath),
			Err:     err,
		}
	}

	emitStage(req.OnStage, domain.JobStatusTranscribing)
	audio, err := p.openFile(req.InputPath)
	if err != nil {
		return Result{}, &PipelineError{
			Kind:    KindIO,
			Stage:   domain.JobStatusTranscribing,
			Message: fmt.Sprintf("open input audio file: %v", err),
			Err:     err,
		}
	}

	record, err := p.transcriber.Transcribe(ctx, audio, filepath.Base(req.InputPath), p.cfg.TranscriptionModel)
	_ = audio.Close()
	if err != nil {
		return Result{}, &PipelineError{
			Kind:    KindCollaborator,
			Stage:   domain.JobStatusTranscribing,
			Message: fmt.Sprintf("transcription failed: %v", err),
			Err:     err,
		}
	}

	emitStage(req.OnStage, domain.JobStatusWritingArtifacts)
	baseName := timestampedBaseName(req.InputPath, p.now())
	artifacts, err := WriteArtifacts(record, p.cfg.OutputDir, baseName)
	if err != nil {
		return Result{}, &PipelineError{
			Kind:    KindIO,
			Stage:   domain.JobStatusWritingArtifacts,
			Message: fmt.Sprintf("write artifacts: %v", err),
			Err:     err,
		}
	}

	result := Result{
		Transcript:  artifacts.Transcript,
		TextPath:    artifacts.TextPath,
		RecordPath:  artifacts.RecordPath,
		CaptionPath: artifacts.CaptionPath,
		Status:      "Transcription complete.",
	}
	if !req.Summarize {
		return result, nil
	}

	emitStage(req.OnStage, domain.JobStatusSummarizing)
	// The blank-prompt check deliberately happens after transcription
	// artifacts are on disk and before the completion call.
	if strings.TrimSpace(req.PromptTemplate) == "" {
		return Result{}, &PipelineError{
			Kind:    KindValidation,
			Stage:   domain.JobStatusSummarizing,
			Message: "selected prompt is empty; provide prompt text or disable summarization",
		}
	}

	summary, err := summarize(ctx, p.completer, p.cfg.SummaryModel, req.PromptTemplate, artifacts.Transcript)
	if err != nil {
		return Result{}, &PipelineError{
			Kind:    KindCollaborator,
			Stage:   domain.JobStatusSummarizing,
			Message: fmt.Sprintf("summarization failed: %v", err),
			Err:     err,
		}
	}

	summaryPath := filepath.Join(p.cfg.OutputDir, baseName+"-summary.txt")
	if err := os.WriteFile(summaryPath, []byte(summary+"\n"), 0o644); err != nil {
		return Result{}, &PipelineError{
			Kind:    KindIO,
			Stage:   domain.JobStatusSummarizing,
			Message: fmt.Sprintf("write summary: %v", err),
			Err:     err,
		}
	}

	result.Summary = summary
	result.SummaryPath = summaryPath
	result.Status = "Transcription and summary complete."
	return result, nil
}

// emitStage forwards stage updates when a callback is configured.
func emitStage(cb func(stage domain.JobStatus), stage domain.JobStatus) {
	if cb != nil {
		cb(stage)
	}
}

// timestampedBaseName builds the shared artifact base name from the input
// file stem and a second-resolution generation timestamp. Two runs landing
// in the same second produce the same base name and silently overwrite.
func timestampedBaseName(inputPath string, now time.Time) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "-" + now.Format("20060102-150405")
}

// NewPipelineForTests constructs a pipeline with injectable dependencies.
func NewPipelineForTests(
	cfg Config,
	transcriber transcriptionClient,
	completer completionClient,
	now func() time.Time,
	stat func(name string) (os.FileInfo, error),
	openFile func(name string) (io.ReadCloser, error),
) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		transcriber: transcriber,
		completer:   completer,
		now:         now,
		stat:        stat,
		openFile:    openFile,
	}
}
