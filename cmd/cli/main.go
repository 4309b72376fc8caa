package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cloud-transcriber/internal/config"
	"cloud-transcriber/internal/logger"
	"cloud-transcriber/internal/openai"
	"cloud-transcriber/internal/prompts"
	"cloud-transcriber/internal/transcribe"
)

var (
	flagSummarize  bool
	flagPromptName string
	flagPromptText string
	flagOutputDir  string
)

var rootCmd = &cobra.Command{
	Use:   "cloud-transcriber AUDIO_PATH",
	Short: "Transcribe an audio file and optionally summarize it",
	Long: `Transcribes AUDIO_PATH with the OpenAI transcription service and writes
transcript (.txt), captions (.srt), and raw record (.json) files under the
output directory, plus an optional prompt-driven summary.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
	// The pipeline error is already printed with context; suppress
	// cobra's usage dump on runtime failures.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().BoolVar(&flagSummarize, "summarize", true, "also run the summary prompt")
	rootCmd.Flags().StringVar(&flagPromptName, "prompt", prompts.DefaultPromptName, "name of the saved prompt to use")
	rootCmd.Flags().StringVar(&flagPromptText, "prompt-text", "", "override prompt text instead of using the saved prompt")
	rootCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "artifact output directory (default \"out\")")
}

func run(cmd *cobra.Command, args []string) error {
	log, err := logger.New(os.Getenv("CLOUD_TRANSCRIBER_LOG_MODE"))
	if err != nil {
		return err
	}
	defer log.Sync()

	settings := config.DefaultSettings()
	if flagOutputDir != "" {
		settings.OutputDir = flagOutputDir
	}

	library := prompts.NewLibrary(settings.PromptsPath)
	if _, err := library.Ensure(); err != nil {
		return err
	}

	template := flagPromptText
	if !cmd.Flags().Changed("prompt-text") {
		loaded, err := library.Load(flagPromptName)
		if err != nil {
			return err
		}
		template = loaded
	}

	apiKey := strings.TrimSpace(os.Getenv(config.EnvAPIKey))
	client := openai.NewClient(apiKey)
	pipeline := transcribe.NewPipeline(transcribe.Config{
		APIKey:             apiKey,
		OutputDir:          settings.OutputDir,
		TranscriptionModel: settings.TranscriptionModel,
		SummaryModel:       settings.SummaryModel,
	}, client, client)

	log.Info("run started", "input", args[0], "summarize", flagSummarize, "outputDir", settings.OutputDir)
	result, err := pipeline.Run(context.Background(), transcribe.Request{
		InputPath:      args[0],
		Summarize:      flagSummarize,
		PromptTemplate: template,
	})
	if err != nil {
		log.Error("run failed", "error", err)
		return err
	}
	log.Info("run completed", "textPath", result.TextPath, "summaryPath", result.SummaryPath)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Status)
	fmt.Fprintf(out, "Transcript: %s\n", result.TextPath)
	fmt.Fprintf(out, "Captions: %s\n", result.CaptionPath)
	fmt.Fprintf(out, "Verbose JSON: %s\n", result.RecordPath)
	if result.SummaryPath != "" {
		fmt.Fprintf(out, "Summary: %s\n", result.SummaryPath)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
