package transcribe

import (
	"context"
	"strings"

	"cloud-transcriber/internal/prompts"
)

// transcriptFallbackLabel separates the template from the transcript when
// the author left out the placeholder token.
const transcriptFallbackLabel = "\n\nTranscript:\n"

// completionClient is the text-completion collaborator consumed by the
// summarizer.
type completionClient interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// BuildSummaryPrompt fills the template's transcript placeholder with the
// trimmed transcript. Templates without the placeholder get the transcript
// appended under a fixed label so it is never silently dropped.
func BuildSummaryPrompt(template, transcript string) string {
	cleaned := strings.TrimSpace(transcript)
	if strings.Contains(template, prompts.Placeholder) {
		return strings.ReplaceAll(template, prompts.Placeholder, cleaned)
	}
	return strings.TrimSpace(template) + transcriptFallbackLabel + cleaned
}

// summarize renders the prompt and invokes the completion collaborator.
// Collaborator errors propagate unchanged; the caller classifies them.
func summarize(ctx context.Context, client completionClient, model, template, transcript string) (string, error) {
	out, err := client.GenerateText(ctx, model, BuildSummaryPrompt(template, transcript))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
