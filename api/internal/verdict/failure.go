package verdict

import (
	"fmt"
	"strings"
)

// Kind names the class of problem absorbed by the Defaulter.
type Kind string

const (
	KindEmpty      Kind = "empty"
	KindExtraction Kind = "extraction"
	KindValidation Kind = "validation"
	KindUpstream   Kind = "upstream"
	KindInternal   Kind = "internal"
)

// excerptRunes bounds every piece of raw text copied into a diagnostic.
const excerptRunes = 120

// Failure is a problem that Default turns into a record.
type Failure interface {
	error
	Kind() Kind
	// Reason is the single human-readable entry placed into Record.Reasons.
	Reason() string
}

// ExtractionError reports that no JSON object could be found in the completion.
type ExtractionError struct {
	Empty   bool
	Excerpt string
}

func (e *ExtractionError) Error() string { return "verdict: " + e.Reason() }

func (e *ExtractionError) Kind() Kind {
	if e == nil || e.Empty {
		return KindEmpty
	}
	return KindExtraction
}

func (e *ExtractionError) Reason() string {
	if e == nil || e.Empty {
		return "upstream returned no content"
	}
	return fmt.Sprintf("no parseable JSON found: %q", e.Excerpt)
}

// ValidationError reports that the payload had no usable score.
type ValidationError struct {
	Fields  []string
	Excerpt string
}

func (e *ValidationError) Error() string { return "verdict: " + e.Reason() }

func (e *ValidationError) Kind() Kind { return KindValidation }

func (e *ValidationError) Reason() string {
	if e == nil {
		return "score field missing or invalid"
	}
	return fmt.Sprintf("%s field missing or invalid: %q", strings.Join(e.Fields, ", "), e.Excerpt)
}

// UpstreamFailure is handed in by the transport when no completion was
// obtained at all. Status is the HTTP status when one was received, 0 otherwise.
type UpstreamFailure struct {
	Status int
	Cause  string
}

// NewUpstreamFailure builds an UpstreamFailure with a bounded cause text.
func NewUpstreamFailure(status int, cause string) *UpstreamFailure {
	return &UpstreamFailure{Status: status, Cause: excerpt(cause)}
}

func (e *UpstreamFailure) Error() string { return "verdict: " + e.Reason() }

func (e *UpstreamFailure) Kind() Kind { return KindUpstream }

func (e *UpstreamFailure) Reason() string {
	if e == nil {
		return "upstream request failed: no details"
	}
	cause := strings.TrimSpace(e.Cause)
	if cause == "" {
		cause = "no details"
	}
	if e.Status > 0 {
		return fmt.Sprintf("upstream request failed (status %d): %s", e.Status, cause)
	}
	return "upstream request failed: " + cause
}

type internalFailure struct{ err error }

func (e internalFailure) Error() string { return "verdict: internal: " + e.err.Error() }
func (e internalFailure) Kind() Kind    { return KindInternal }
func (e internalFailure) Reason() string {
	return "internal error while normalizing the model output"
}

// excerpt trims s and caps it at excerptRunes runes, marking the cut with "...".
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= excerptRunes {
		return s
	}
	return strings.TrimSpace(string(r[:excerptRunes])) + "..."
}
