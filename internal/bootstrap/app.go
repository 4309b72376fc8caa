package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"cloud-transcriber/internal/config"
	"cloud-transcriber/internal/diagnostics"
	"cloud-transcriber/internal/domain"
	"cloud-transcriber/internal/jobs"
	"cloud-transcriber/internal/logger"
	"cloud-transcriber/internal/openai"
	"cloud-transcriber/internal/prompts"
	"cloud-transcriber/internal/transcribe"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var audioDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Audio files",
		Pattern:     "*.mp3;*.wav;*.m4a;*.mp4;*.flac;*.aac;*.ogg;*.webm",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// App wires configuration, prompts, jobs, the pipeline, and UI runtime
// callbacks. One active transcription job per session.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Prompts     *prompts.Library
	Diagnostics domain.DiagnosticReport

	apiKey      string
	newPipeline func(cfg transcribe.Config) pipelineRunner
	assets      fs.FS
	checker     *diagnostics.Checker
	log         *logger.Logger

	mu          sync.Mutex
	activeJobID string
	events      *jobs.EventBus
	runtimeCtx  context.Context
}

// pipelineRunner isolates the transcription pipeline behind an interface.
type pipelineRunner interface {
	Run(ctx context.Context, req transcribe.Request) (transcribe.Result, error)
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded
// frontend assets. The service credential is resolved from the environment
// exactly once here and injected everywhere else.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	store := config.NewJSONStore(filepath.Join(homeDir, ".cloud-transcriber", "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	log, err := logger.New(os.Getenv("CLOUD_TRANSCRIBER_LOG_MODE"))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	apiKey := strings.TrimSpace(os.Getenv(config.EnvAPIKey))
	client := openai.NewClient(apiKey)

	checker := diagnostics.NewChecker()
	report := checker.Run(settings, apiKey)

	return &App{
		Settings:    settings,
		Store:       store,
		Jobs:        jobs.NewManager(),
		Prompts:     prompts.NewLibrary(settings.PromptsPath),
		Diagnostics: report,
		apiKey:      apiKey,
		newPipeline: func(cfg transcribe.Config) pipelineRunner {
			return transcribe.NewPipeline(cfg, client, client)
		},
		assets:  assets,
		checker: checker,
		log:     log.With("component", "app"),
		events:  jobs.NewEventBus(1000),
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Cloud Transcriber",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores the Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns startup checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings, a.apiKey)
	report := a.Diagnostics
	a.mu.Unlock()

	return report, nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics
// and repoints the prompt library at the configured store path.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	a.Prompts = prompts.NewLibrary(normalized.PromptsPath)
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized, a.apiKey)
	}
	a.mu.Unlock()

	return normalized, nil
}

// ListModelOptions returns the selectable cloud model catalog.
func (a *App) ListModelOptions() []domain.ModelOption {
	return ModelCatalog()
}

// ListPrompts returns all saved prompt names, seeding defaults on first use.
func (a *App) ListPrompts() ([]string, error) {
	return a.promptLibrary().Names()
}

// LoadPrompt returns the template for name; absent names yield empty text.
func (a *App) LoadPrompt(name string) (string, error) {
	return a.promptLibrary().Load(name)
}

// SavePrompt validates and upserts one template. Name and text must be
// non-empty; the library itself does not validate content.
func (a *App) SavePrompt(name, text string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("prompt name is required")
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("prompt text cannot be empty")
	}
	return a.promptLibrary().Save(name, text)
}

// PickInputFile opens a native file dialog for audio selection.
func (a *App) PickInputFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select audio file",
		Filters: audioDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickOutputDirectory opens a native directory picker for artifact export.
func (a *App) PickOutputDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select output directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenOutputFolder opens the given path (or configured output dir) in the
// platform file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.OutputDir
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// StartTranscription resolves the prompt template, creates a job, and runs
// the pipeline asynchronously so the interface never blocks.
func (a *App) StartTranscription(inputPath string, summarize bool, promptName, promptText string) (domain.Job, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Job{}, fmt.Errorf("load settings: %w", err)
	}

	template := promptText
	if strings.TrimSpace(template) == "" && promptName != "" {
		template, err = a.promptLibrary().Load(promptName)
		if err != nil {
			return domain.Job{}, fmt.Errorf("load prompt %q: %w", promptName, err)
		}
	}

	jobID := uuid.NewString()
	if err := a.Jobs.Start(jobID); err != nil {
		return domain.Job{}, err
	}

	a.mu.Lock()
	a.activeJobID = jobID
	a.Settings = settings
	a.mu.Unlock()

	a.log.Info("job started", "jobId", jobID, "input", inputPath, "summarize", summarize)
	a.publishStatus(jobID, domain.JobStatusValidating, "Job started")

	go a.runTranscriptionJob(context.Background(), jobID, inputPath, summarize, template, settings)
	return a.Jobs.Current(), nil
}

// CurrentJob returns current job metadata and status.
func (a *App) CurrentJob() domain.Job {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// runTranscriptionJob executes the pipeline and maps outcomes to job events.
func (a *App) runTranscriptionJob(ctx context.Context, jobID, inputPath string, summarize bool, template string, settings domain.Settings) {
	pipeline := a.newPipeline(transcribe.Config{
		APIKey:             a.apiKey,
		OutputDir:          settings.OutputDir,
		TranscriptionModel: settings.TranscriptionModel,
		SummaryModel:       settings.SummaryModel,
	})

	req := transcribe.Request{
		InputPath:      inputPath,
		Summarize:      summarize,
		PromptTemplate: template,
		OnStage: func(stage domain.JobStatus) {
			if err := a.Jobs.Transition(stage); err == nil {
				a.publishStatus(jobID, stage, "Running "+string(stage)+" stage")
			}
		},
	}

	result, err := pipeline.Run(ctx, req)
	if err != nil {
		_ = a.Jobs.Transition(domain.JobStatusFailed)
		a.publishStatus(jobID, domain.JobStatusFailed, "Job failed")

		kind := ""
		var pipelineErr *transcribe.PipelineError
		if errors.As(err, &pipelineErr) {
			kind = string(pipelineErr.Kind)
		}

		a.log.Error("job failed", "jobId", jobID, "kind", kind, "error", err)
		a.publishEvent(jobs.Event{
			JobID:     jobID,
			Type:      jobs.EventTypeError,
			Status:    domain.JobStatusFailed,
			Message:   err.Error(),
			ErrorKind: kind,
		})
		a.clearActiveJob(jobID)
		return
	}

	if err := a.Jobs.Transition(domain.JobStatusDone); err == nil {
		a.publishStatus(jobID, domain.JobStatusDone, result.Status)
	}

	a.log.Info("job completed", "jobId", jobID, "textPath", result.TextPath)
	a.publishEvent(jobs.Event{
		JobID:       jobID,
		Type:        jobs.EventTypeResult,
		Status:      domain.JobStatusDone,
		Message:     result.Status,
		Transcript:  result.Transcript,
		Summary:     result.Summary,
		TextPath:    result.TextPath,
		RecordPath:  result.RecordPath,
		CaptionPath: result.CaptionPath,
		SummaryPath: result.SummaryPath,
	})
	a.clearActiveJob(jobID)
}

// promptLibrary returns the current prompt library under lock.
func (a *App) promptLibrary() *prompts.Library {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Prompts
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(jobID string, status domain.JobStatus, message string) {
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "job:event", published)
	}
}

// clearActiveJob clears bookkeeping for completed job IDs.
func (a *App) clearActiveJob(jobID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeJobID == jobID {
		a.activeJobID = ""
	}
}

// runtimeContext returns the Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// normalizeSettings trims user inputs and restores defaults for empty fields.
func normalizeSettings(settings domain.Settings) domain.Settings {
	def := config.DefaultSettings()

	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	settings.PromptsPath = strings.TrimSpace(settings.PromptsPath)
	settings.TranscriptionModel = strings.TrimSpace(settings.TranscriptionModel)
	settings.SummaryModel = strings.TrimSpace(settings.SummaryModel)

	if settings.OutputDir == "" {
		settings.OutputDir = def.OutputDir
	}
	if settings.PromptsPath == "" {
		settings.PromptsPath = def.PromptsPath
	}
	if settings.TranscriptionModel == "" {
		settings.TranscriptionModel = def.TranscriptionModel
	}
	if settings.SummaryModel == "" {
		settings.SummaryModel = def.SummaryModel
	}
	return settings
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
