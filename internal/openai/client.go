package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"cloud-transcriber/internal/domain"
)

const defaultBaseURL = "https://api.openai.com"

// Client calls the OpenAI transcription and responses endpoints. Both calls
// are blocking; the only timeout is the HTTP client's own.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for api.openai.com using the injected credential.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

// NewClientForTests creates a client pointed at a test server.
func NewClientForTests(apiKey, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// APIError is a non-2xx response from the service, surfaced verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

// Error formats the status and response body for boundary reporting.
func (e *APIError) Error() string {
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Transcribe uploads one audio stream and returns the verbose transcription
// record. The response is decoded into the typed record immediately; a
// response carrying neither text nor segments is rejected as malformed.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, model string) (domain.TranscriptionRecord, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return domain.TranscriptionRecord{}, fmt.Errorf("build transcription request: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return domain.TranscriptionRecord{}, fmt.Errorf("read audio stream: %w", err)
	}
	_ = writer.WriteField("model", model)
	_ = writer.WriteField("response_format", "verbose_json")
	if err := writer.Close(); err != nil {
		return domain.TranscriptionRecord{}, fmt.Errorf("build transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return domain.TranscriptionRecord{}, fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	raw, err := c.doRaw(req)
	if err != nil {
		return domain.TranscriptionRecord{}, err
	}

	var record domain.TranscriptionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.TranscriptionRecord{}, fmt.Errorf("decode transcription response: %w", err)
	}
	if record.Text == "" && len(record.Segments) == 0 {
		return domain.TranscriptionRecord{}, fmt.Errorf("transcription response is missing both text and segments")
	}

	return record, nil
}

// GenerateText sends one text prompt to the responses endpoint and returns
// the concatenated assistant output text.
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	reqBody := responsesRequest{
		Model: model,
		Input: prompt,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doRaw(req)
	if err != nil {
		return "", err
	}

	var resp responsesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("completion response contains no output text")
	}
	return text, nil
}

// doRaw executes one request and returns the body, mapping non-2xx
// statuses to APIError.
func (c *Client) doRaw(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

// responsesRequest is the minimal /v1/responses payload: one text input.
type responsesRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
}

// extractOutputText concatenates assistant message output_text parts.
func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" && c.Text != "" {
				out.WriteString(c.Text)
			}
		}
	}
	return out.String()
}
