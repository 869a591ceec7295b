package verdict

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// Candidate is a decoded but unvalidated JSON object. Numbers are kept as
// json.Number so that out-of-range values reach the validator intact.
type Candidate map[string]any

// Extract finds the JSON object in a raw model completion. The whole text is
// tried first; then the span from the first '{' to the last '}'. Anything else
// yields an *ExtractionError with a bounded excerpt of the text.
func Extract(text string) (Candidate, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, &ExtractionError{Empty: true}
	}
	if c, ok := decodeObject(s); ok {
		return c, nil
	}
	if i := strings.IndexByte(s, '{'); i >= 0 {
		if j := strings.LastIndexByte(s, '}'); j > i {
			if c, ok := decodeObject(s[i : j+1]); ok {
				return c, nil
			}
		}
	}
	return nil, &ExtractionError{Excerpt: excerpt(s)}
}

// decodeObject strictly parses s as exactly one JSON object.
func decodeObject(s string) (Candidate, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return Candidate(m), true
}
