package gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"forrealscan/api/internal/engine"
	"forrealscan/api/internal/util"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	formatName     = "assessment"
	maxErrBody     = 1024
)

type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
}

func New(key, model string) *Engine {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		// Ждём первые заголовки дольше: vision-модели думают медленно
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}
	return &Engine{
		APIKey:  strings.TrimSpace(key),
		Model:   strings.TrimSpace(model),
		BaseURL: DefaultBaseURL,
		// Timeout=0: общий дедлайн задаёт context вызывающего
		httpc: &http.Client{Transport: tr},
	}
}

// WithHTTPClient overrides the internal HTTP client (e.g., for custom timeouts or tracing).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

func (e *Engine) WithBaseURL(u string) *Engine {
	if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
		e.BaseURL = u
	}
	return e
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, in engine.Input) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("gpt: %w: OPENAI_API_KEY is empty", engine.ErrNotConfigured)
	}
	model := e.Model
	if strings.TrimSpace(in.Model) != "" {
		model = strings.TrimSpace(in.Model)
	}

	payload, err := json.Marshal(e.requestBody(model, in))
	if err != nil {
		return "", fmt.Errorf("gpt: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gpt: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("gpt: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gpt: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &engine.UpstreamError{
			Provider: "openai",
			Status:   resp.StatusCode,
			Body:     util.Truncate(string(raw), maxErrBody),
		}
	}
	return extractChatText(raw)
}

func (e *Engine) requestBody(model string, in engine.Input) map[string]any {
	var userContent []any
	if s := strings.TrimSpace(in.User); s != "" {
		userContent = append(userContent, map[string]any{"type": "text", "text": s})
	}
	userContent = append(userContent, map[string]any{
		"type": "image_url",
		"image_url": map[string]any{
			"url":    util.MakeDataURL(in.MIME, in.Image),
			"detail": "high",
		},
	})

	messages := make([]any, 0, 2)
	if s := strings.TrimSpace(in.System); s != "" {
		messages = append(messages, map[string]any{"role": "system", "content": s})
	}
	messages = append(messages, map[string]any{"role": "user", "content": userContent})

	body := map[string]any{
		"model":    model,
		"messages": messages,
	}
	// reasoning-модели принимают только temperature по умолчанию
	if !fixedTemperature(model) {
		body["temperature"] = 0
	}
	if in.Schema != nil {
		schema := cloneSchema(in.Schema)
		util.FixJSONSchemaStrict(schema)
		body["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   formatName,
				"strict": true,
				"schema": schema,
			},
		}
	}
	return body
}

func fixedTemperature(model string) bool {
	m := strings.ToLower(model)
	return strings.Contains(m, "gpt-5") || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4")
}

func cloneSchema(s map[string]any) map[string]any {
	b, err := json.Marshal(s)
	if err != nil {
		return s
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return s
	}
	return out
}

// extractChatText достаёт текст первого choice. content бывает строкой или
// массивом частей {type, text}; части склеиваются через перевод строки.
// Если текста нет, возвращается refusal: дальше он уйдёт в нормализацию.
func extractChatText(raw []byte) (string, error) {
	var env struct {
		Choices []struct {
			Message struct {
				Content json.RawMessage `json:"content"`
				Refusal string          `json:"refusal"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("gpt: bad response envelope: %w; body=%s", err, util.Truncate(string(raw), maxErrBody))
	}
	if len(env.Choices) == 0 {
		return "", nil
	}
	msg := env.Choices[0].Message
	if text := contentText(msg.Content); strings.TrimSpace(text) != "" {
		return text, nil
	}
	return strings.TrimSpace(msg.Refusal), nil
}

func contentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var b strings.Builder
	for _, p := range parts {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		// Both `output_text` and `text` are seen in practice
		if p.Type == "text" || p.Type == "output_text" || p.Type == "" {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
