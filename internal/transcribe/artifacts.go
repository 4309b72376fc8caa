package transcribe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cloud-transcriber/internal/domain"
)

// ArtifactSet holds the transcript text and artifact paths of one run.
type ArtifactSet struct {
	Transcript  string
	TextPath    string
	RecordPath  string
	CaptionPath string
}

// WriteArtifacts persists the transcript text, the raw record, and the
// caption file for one transcription, sharing one base name. The output
// directory is created when missing. Filesystem errors propagate as-is;
// files already written before a failure are left in place.
func WriteArtifacts(record domain.TranscriptionRecord, outputDir, baseName string) (ArtifactSet, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return ArtifactSet{}, fmt.Errorf("create output directory %s: %w", outputDir, err)
	}

	transcript := strings.TrimSpace(record.Text)

	textPath := filepath.Join(outputDir, baseName+".txt")
	if err := os.WriteFile(textPath, []byte(transcript+"\n"), 0o644); err != nil {
		return ArtifactSet{}, fmt.Errorf("write transcript: %w", err)
	}

	recordPath := filepath.Join(outputDir, baseName+".json")
	rawJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return ArtifactSet{}, fmt.Errorf("encode transcription record: %w", err)
	}
	if err := os.WriteFile(recordPath, rawJSON, 0o644); err != nil {
		return ArtifactSet{}, fmt.Errorf("write transcription record: %w", err)
	}

	captionPath := filepath.Join(outputDir, baseName+".srt")
	if err := os.WriteFile(captionPath, []byte(captionFile(record.Segments)), 0o644); err != nil {
		return ArtifactSet{}, fmt.Errorf("write captions: %w", err)
	}

	return ArtifactSet{
		Transcript:  transcript,
		TextPath:    textPath,
		RecordPath:  recordPath,
		CaptionPath: captionPath,
	}, nil
}

// captionFile renders segments as SRT blocks. The 1-based index is assigned
// by position in the segment list before the blank check, so segments with
// blank text are skipped without renumbering and leave gaps in the sequence.
// When nothing remains, the caption file content is empty (zero bytes).
func captionFile(segments []domain.Segment) string {
	var lines []string
	for i, segment := range segments {
		idx := i + 1
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}

		lines = append(lines,
			strconv.Itoa(idx),
			SRTTimestamp(segment.Start)+" --> "+SRTTimestamp(segment.End),
			text,
			"",
		)
	}

	body := strings.TrimSpace(strings.Join(lines, "\n"))
	if body == "" {
		return ""
	}
	return body + "\n"
}
