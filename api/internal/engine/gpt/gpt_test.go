package gpt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forrealscan/api/internal/engine"
)

func newTestEngine(t *testing.T, h http.HandlerFunc) *Engine {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New("sk-test", "gpt-4o-mini").WithBaseURL(srv.URL).WithHTTPClient(srv.Client())
}

func testInput() engine.Input {
	return engine.Input{
		Image:  []byte{0xff, 0xd8, 0xff},
		MIME:   "image/jpeg",
		System: "you are a forensic analyst",
		User:   "assess this image",
		Schema: map[string]any{
			"$schema": "http://json-schema.org/draft-07/schema#",
			"properties": map[string]any{
				"score": map[string]any{"type": "number"},
			},
		},
	}
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got map[string]any
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"{\"score\": 12}"}}]}`)
	})

	in := testInput()
	out, err := e.Complete(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, `{"score": 12}`, out)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 0, got["temperature"])

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	user := msgs[1].(map[string]any)["content"].([]any)
	require.Len(t, user, 2)
	img := user[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/jpeg;base64,/9j/", img["url"])

	rf := got["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", rf["type"])
	js := rf["json_schema"].(map[string]any)
	assert.Equal(t, true, js["strict"])
	schema := js["schema"].(map[string]any)
	assert.Equal(t, false, schema["additionalProperties"])
	assert.NotContains(t, schema, "$schema")

	// the caller's schema is left untouched
	assert.Contains(t, in.Schema, "$schema")
}

func TestCompleteModelOverride(t *testing.T) {
	var got map[string]any
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	})
	in := testInput()
	in.Model = "gpt-5-mini"
	_, err := e.Complete(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "gpt-5-mini", got["model"])
	assert.NotContains(t, got, "temperature")
}

func TestCompleteContentShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"choices":[{"message":{"content":"plain"}}]}`, "plain"},
		{"parts", `{"choices":[{"message":{"content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}}]}`, "a\nb"},
		{"no choices", `{"choices":[]}`, ""},
		{"null content", `{"choices":[{"message":{"content":null}}]}`, ""},
		{"refusal", `{"choices":[{"message":{"content":null,"refusal":"I can't help with that"}}]}`, "I can't help with that"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			out, err := e.Complete(context.Background(), testInput())
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCompleteNon2xx(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limited"}}`)
	})
	_, err := e.Complete(context.Background(), testInput())

	var ue *engine.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
	assert.Contains(t, ue.Body, "rate limited")
	assert.True(t, ue.Temporary())
}

func TestCompleteWithoutKey(t *testing.T) {
	_, err := New("", "gpt-4o-mini").Complete(context.Background(), testInput())
	assert.ErrorIs(t, err, engine.ErrNotConfigured)
}
