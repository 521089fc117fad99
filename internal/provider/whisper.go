package provider

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
)

const (
	whisperBaseURL = "https://api.openai.com/v1"
	whisperModel   = "whisper-1"
)

// Whisper transcribes audio through the OpenAI transcriptions endpoint.
type Whisper struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewWhisper creates a Whisper client.
func NewWhisper(apiKey string) (*Whisper, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &Whisper{
		apiKey:  apiKey,
		baseURL: whisperBaseURL,
		model:   whisperModel,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}, nil
}

// Transcribe uploads the audio as multipart form data and returns the
// recognized text.
func (w *Whisper) Transcribe(ctx context.Context, audio []byte, mimeType, filename string) (string, error) {
	if filename == "" {
		filename = "speech.webm"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("whisper form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("whisper form: %w", err)
	}
	if err := mw.WriteField("model", w.model); err != nil {
		return "", fmt.Errorf("whisper form: %w", err)
	}
	if err := mw.WriteField("temperature", "0"); err != nil {
		return "", fmt.Errorf("whisper form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whisper form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("whisper request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("whisper read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("whisper decode: %w", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
