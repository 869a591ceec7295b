package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnknownEngine is returned by GetEngine for names it does not know.
	ErrUnknownEngine = errors.New("unknown llm_name")
	// ErrNotConfigured means the engine cannot run at all (e.g. no API key).
	ErrNotConfigured = errors.New("engine not configured")
)

// Input is one image assessment request to an upstream model.
type Input struct {
	Image  []byte
	MIME   string
	System string
	User   string
	// Model overrides the engine's configured model when set.
	Model string
	// Schema is the JSON schema of the expected answer, if the provider supports one.
	Schema map[string]any
}

// Engine returns the raw text of the model's answer. An empty string with a
// nil error means the model answered with no content.
type Engine interface {
	Name() string
	GetModel() string
	Complete(ctx context.Context, in Input) (string, error)
}

// UpstreamError is a non-success HTTP answer from the provider.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Provider, e.Status, strings.TrimSpace(e.Body))
}

// Temporary reports whether repeating the same request may succeed.
func (e *UpstreamError) Temporary() bool {
	return e.Status == http.StatusRequestTimeout || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

type Engines struct {
	Default string
	OpenAI  Engine
	Gemini  Engine
	Stub    Engine
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = e.Default
	}
	var eng Engine
	switch name {
	case "gpt", "openai":
		eng = e.OpenAI
	case "gemini":
		eng = e.Gemini
	case "stub":
		eng = e.Stub
	}
	if eng == nil {
		return nil, fmt.Errorf("%w %q; use 'gpt', 'gemini' or 'stub'", ErrUnknownEngine, llmName)
	}
	return eng, nil
}
