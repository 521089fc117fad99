package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini generates day plans, transcribes audio and writes notification
// copy through the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider. The model defaults to
// gemini-1.5-flash.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// GeneratePlanJSON asks the plan model for raw JSON. The response text is
// returned as-is; repairing it is the normalizer's job.
func (g *Gemini) GeneratePlanJSON(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.3),
		MaxOutputTokens:  900,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini plan: %w", err)
	}
	return resp.Text(), nil
}

// Transcribe sends audio inline and returns the recognized text. The
// filename is accepted for interface parity with Whisper and ignored.
func (g *Gemini) Transcribe(ctx context.Context, audio []byte, mimeType, _ string) (string, error) {
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Transcribe precisely."),
			genai.NewPartFromBytes(audio, mimeType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// DailyImpulse generates a short push-notification line from the user's
// wish text and splits it into title and body on the first em dash.
func (g *Gemini) DailyImpulse(ctx context.Context, prompt string) (title, body string, err error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", "", fmt.Errorf("gemini impulse: %w", err)
	}

	return SplitImpulse(resp.Text())
}

// SplitImpulse parses "Title — sentence" model output with fallbacks for
// missing parts.
func SplitImpulse(full string) (title, body string, err error) {
	parts := strings.SplitN(strings.TrimSpace(full), "—", 2)
	title = strings.TrimSpace(parts[0])
	if title == "" {
		title = "Daily impulse"
	}
	if len(parts) > 1 {
		body = strings.TrimSpace(parts[1])
	}
	if body == "" {
		body = "One small step. Start now."
	}
	return title, body, nil
}
