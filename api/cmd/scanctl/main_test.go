package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forrealscan/api/internal/verdict"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	normalizeFlags.explain = false
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNormalizeStdin(t *testing.T) {
	out, stderr, err := execute(t, "The answer: {\"score\": 85}", "normalize", "--explain")
	require.NoError(t, err)
	assert.Equal(t, "fallback: none\n", stderr)

	var rec verdict.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, 85.0, rec.Score)
	assert.Equal(t, verdict.LabelLikelyAI, rec.Label)
}

func TestNormalizeFileWithFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "completion.txt")
	require.NoError(t, os.WriteFile(path, []byte(`{"score": "very high"}`), 0o600))

	out, stderr, err := execute(t, "", "normalize", path, "--explain")
	require.NoError(t, err)
	assert.Contains(t, stderr, "fallback: validation: score field missing or invalid")

	var rec verdict.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, verdict.NeutralScore, rec.Score)
	assert.Equal(t, verdict.LabelUncertain, rec.Label)
}

func TestNormalizeMissingFile(t *testing.T) {
	_, _, err := execute(t, "", "normalize", filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorContains(t, err, "read completion")
}

func TestAnalyzeWithStub(t *testing.T) {
	t.Setenv("DEFAULT_LLM", "stub")
	t.Setenv("PROMPTS_FILE", "")
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))

	analyzeFlags.llm, analyzeFlags.mode = "", ""
	out, stderr, err := execute(t, "", "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "engine: stub")

	var rec verdict.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "stub", rec.Category)
}
