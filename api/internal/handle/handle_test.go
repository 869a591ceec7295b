package handle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forrealscan/api/internal/engine"
	"forrealscan/api/internal/prompt"
	"forrealscan/api/internal/scan"
	"forrealscan/api/internal/verdict"
)

var pngB64 = base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))

type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) Name() string     { return "gpt" }
func (f *fakeEngine) GetModel() string { return "fake" }
func (f *fakeEngine) Complete(context.Context, engine.Input) (string, error) {
	return f.text, f.err
}

func newMux(t *testing.T, eng engine.Engine) *http.ServeMux {
	t.Helper()
	prompts, err := prompt.Load("")
	require.NoError(t, err)
	svc := scan.New(&engine.Engines{Default: "gpt", OpenAI: eng}, prompts, 1<<10, nil)
	mux := http.NewServeMux()
	New(svc, nil).Routes(mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeRecord(t *testing.T, rec *httptest.ResponseRecorder) verdict.Record {
	t.Helper()
	var out verdict.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAnalyzeOK(t *testing.T) {
	mux := newMux(t, &fakeEngine{text: `{"score": 12, "category": "portrait"}`})

	for _, path := range []string{"/api/analyze", "/v1/llm/analyze"} {
		rec := do(mux, http.MethodPost, path, `{"imageBase64":"`+pngB64+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
		assert.Empty(t, rec.Header().Get(HeaderFallback))

		out := decodeRecord(t, rec)
		assert.Equal(t, 12.0, out.Score)
		assert.Equal(t, verdict.LabelLikelyHuman, out.Label)
		assert.Equal(t, "portrait", out.Category)
	}
}

func TestAnalyzeSnakeCaseAlias(t *testing.T) {
	mux := newMux(t, &fakeEngine{text: `{"score": 90}`})
	rec := do(mux, http.MethodPost, "/v1/llm/analyze", `{"image_b64":"data:image/png;base64,`+pngB64+`","llm_name":"openai"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, verdict.LabelLikelyAI, decodeRecord(t, rec).Label)
}

func TestAnalyzeKeepsRequestID(t *testing.T) {
	mux := newMux(t, &fakeEngine{text: `{"score": 50}`})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"imageBase64":"`+pngB64+`"}`))
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
}

func TestAnalyzeUpstreamFailureIsOK(t *testing.T) {
	mux := newMux(t, &fakeEngine{err: &engine.UpstreamError{Provider: "openai", Status: 503, Body: "overloaded"}})
	rec := do(mux, http.MethodPost, "/api/analyze", `{"imageBase64":"`+pngB64+`"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "upstream", rec.Header().Get(HeaderFallback))
	out := decodeRecord(t, rec)
	assert.Equal(t, verdict.NeutralScore, out.Score)
	assert.Equal(t, []string{"upstream request failed (status 503): overloaded"}, out.Reasons)
}

func TestAnalyzeGarbageAnswerIsOK(t *testing.T) {
	mux := newMux(t, &fakeEngine{text: "no idea, sorry"})
	rec := do(mux, http.MethodPost, "/api/analyze", `{"imageBase64":"`+pngB64+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "extraction", rec.Header().Get(HeaderFallback))
}

func TestAnalyzeErrors(t *testing.T) {
	big := base64.StdEncoding.EncodeToString(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 2<<10)...))
	tests := []struct {
		name   string
		method string
		body   string
		eng    engine.Engine
		code   int
	}{
		{"method", http.MethodGet, "", nil, http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, `{"imageBase64":`, nil, http.StatusBadRequest},
		{"no image", http.MethodPost, `{}`, nil, http.StatusBadRequest},
		{"bad base64", http.MethodPost, `{"imageBase64":"%%%"}`, nil, http.StatusBadRequest},
		{"unknown engine", http.MethodPost, `{"imageBase64":"` + pngB64 + `","llm_name":"claude"}`, nil, http.StatusBadRequest},
		{"unknown mode", http.MethodPost, `{"imageBase64":"` + pngB64 + `","mode":"paranoid"}`, nil, http.StatusBadRequest},
		{"too large", http.MethodPost, `{"imageBase64":"` + big + `"}`, nil, http.StatusRequestEntityTooLarge},
		{"body too large", http.MethodPost, `{"imageBase64":"` + strings.Repeat("A", 128<<10) + `"}`, nil, http.StatusRequestEntityTooLarge},
		{"unsupported", http.MethodPost, `{"imageBase64":"` + base64.StdEncoding.EncodeToString([]byte("hello world")) + `"}`, nil, http.StatusUnsupportedMediaType},
		{"not configured", http.MethodPost, `{"imageBase64":"` + pngB64 + `"}`, &fakeEngine{err: engine.ErrNotConfigured}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := tt.eng
			if eng == nil {
				eng = &fakeEngine{text: `{"score": 1}`}
			}
			rec := do(newMux(t, eng), tt.method, "/api/analyze", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestNormalize(t *testing.T) {
	mux := newMux(t, &fakeEngine{})

	rec := do(mux, http.MethodPost, "/v1/llm/normalize", `{"text":"Result: {\"score\": 85}"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(HeaderFallback))
	out := decodeRecord(t, rec)
	assert.Equal(t, 85.0, out.Score)
	assert.Equal(t, verdict.LabelLikelyAI, out.Label)
	assert.Equal(t, verdict.ConfidenceHigh, out.Confidence)

	rec = do(mux, http.MethodPost, "/v1/llm/normalize", `{"text":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "empty", rec.Header().Get(HeaderFallback))
	assert.Equal(t, []string{"upstream returned no content"}, decodeRecord(t, rec).Reasons)

	rec = do(mux, http.MethodGet, "/v1/llm/normalize", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(mux, http.MethodPost, "/v1/llm/normalize", `{"text":"`+strings.Repeat("a", 128<<10)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())

	rec = do(mux, http.MethodPost, "/v1/llm/normalize", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := do(newMux(t, &fakeEngine{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestDeadline(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/analyze?timeoutSec=7", nil)
	assert.Equal(t, "7s", deadline(r).String())

	r.Header.Set("X-Request-Timeout", "3")
	assert.Equal(t, "3s", deadline(r).String())

	r = httptest.NewRequest(http.MethodPost, "/api/analyze?timeoutSec=abc", nil)
	assert.Equal(t, defaultDeadline, deadline(r))
}
