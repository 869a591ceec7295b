package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"forrealscan/api/internal/engine"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, in engine.Input) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("gemini: %w: GEMINI_API_KEY is empty", engine.ErrNotConfigured)
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer cl.Close()

	model := e.Model
	if s := strings.TrimSpace(in.Model); s != "" {
		model = s
	}
	m := cl.GenerativeModel(model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	// Возвращаем строго JSON
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	if s := strings.TrimSpace(in.System); s != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(s)}}
	}

	var parts []genai.Part
	if s := strings.TrimSpace(in.User); s != "" {
		parts = append(parts, genai.Text(s))
	}
	parts = append(parts, &genai.Blob{MIMEType: in.MIME, Data: in.Image})

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", upstreamError(err)
	}
	return firstText(resp), nil
}

// upstreamError keeps the HTTP status of API errors so retries can tell
// transient failures from permanent ones.
func upstreamError(err error) error {
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		body := ge.Message
		if body == "" {
			body = ge.Body
		}
		return &engine.UpstreamError{Provider: "gemini", Status: ge.Code, Body: body}
	}
	return fmt.Errorf("gemini: %w", err)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
