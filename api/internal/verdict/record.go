package verdict

import "strings"

// Label is the qualitative verdict derived from the score.
type Label string

const (
	LabelLikelyHuman Label = "likely_human"
	LabelUncertain   Label = "uncertain"
	LabelLikelyAI    Label = "likely_ai"
)

// Confidence says how far the score sits from the undecided midpoint.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

const (
	// CategoryUnclassified is used when the model did not classify the image.
	CategoryUnclassified = "unclassified"

	// DefaultAdvice is returned whenever the model gave no usable advice.
	DefaultAdvice = "Treat this score as a hint, not proof: check the image source, its EXIF and contextual metadata, and run a reverse image search."

	// NeutralScore is the uninformative midpoint used by every default record.
	NeutralScore = 50.0
)

// Record is the normalized assessment returned to callers. Every Record built
// by this package has all fields set: enums are valid, strings are non-empty
// and slices are non-nil so they encode as [].
type Record struct {
	Score      float64    `json:"score"`
	Label      Label      `json:"label"`
	Confidence Confidence `json:"confidence"`
	Category   string     `json:"category"`
	Reasons    []string   `json:"reasons"`
	Artifacts  []string   `json:"artifacts"`
	Advice     string     `json:"advice"`
}

func parseLabel(s string) (Label, bool) {
	switch l := Label(strings.ToLower(strings.TrimSpace(s))); l {
	case LabelLikelyHuman, LabelUncertain, LabelLikelyAI:
		return l, true
	}
	return "", false
}

func parseConfidence(s string) (Confidence, bool) {
	switch c := Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c, true
	}
	return "", false
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
