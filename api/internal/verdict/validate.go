package verdict

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	fieldScore      = "score"
	fieldLabel      = "label"
	fieldConfidence = "confidence"
	fieldCategory   = "category"
	fieldReasons    = "reasons"
	fieldArtifacts  = "artifacts"
	fieldAdvice     = "advice"

	// legacy name of artifacts used by the forensic prompt
	fieldDetails = "details"
)

// Validated is a payload whose fields have been type-checked. Empty Label,
// Confidence, Category or Advice mean "absent" and are filled by Derive.
type Validated struct {
	Score      float64
	Label      Label
	Confidence Confidence
	Category   string
	Advice     string
	Reasons    []string
	Artifacts  []string

	// Dropped lists fields that were present but unusable.
	Dropped []string
}

// Validate checks a candidate against the record schema. Only a missing or
// non-numeric score fails; out-of-range scores are clamped and every other
// bad field is dropped.
func Validate(c Candidate) (Validated, error) {
	score, ok := coerceScore(c[fieldScore])
	if !ok {
		return Validated{}, &ValidationError{Fields: []string{fieldScore}, Excerpt: candidateExcerpt(c)}
	}

	v := Validated{Score: clampScore(score)}

	if raw, present := c[fieldLabel]; present {
		s, _ := raw.(string)
		if l, ok := parseLabel(s); ok {
			v.Label = l
		} else {
			v.Dropped = append(v.Dropped, fieldLabel)
		}
	}
	if raw, present := c[fieldConfidence]; present {
		s, _ := raw.(string)
		if cf, ok := parseConfidence(s); ok {
			v.Confidence = cf
		} else {
			v.Dropped = append(v.Dropped, fieldConfidence)
		}
	}
	v.Category = v.text(c, fieldCategory)
	v.Advice = v.text(c, fieldAdvice)
	v.Reasons = v.list(c, fieldReasons)

	if _, present := c[fieldArtifacts]; !present {
		if _, legacy := c[fieldDetails]; legacy {
			v.Artifacts = v.list(c, fieldDetails)
			return v, nil
		}
	}
	v.Artifacts = v.list(c, fieldArtifacts)
	return v, nil
}

func (v *Validated) text(c Candidate, field string) string {
	raw, present := c[field]
	if !present {
		return ""
	}
	s, _ := raw.(string)
	if s = strings.TrimSpace(s); s == "" {
		v.Dropped = append(v.Dropped, field)
	}
	return s
}

func (v *Validated) list(c Candidate, field string) []string {
	raw, present := c[field]
	if !present || raw == nil {
		return []string{}
	}
	items, ok := raw.([]any)
	if !ok {
		v.Dropped = append(v.Dropped, field)
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := stringify(it); ok {
			out = append(out, s)
		}
	}
	return out
}

// decimalRe accepts plain decimal literals only. ParseFloat alone would also
// take hex floats such as "0x1p6".
var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func coerceScore(raw any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch n := raw.(type) {
	case json.Number:
		f, err = n.Float64()
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		t := strings.TrimSpace(n)
		if !decimalRe.MatchString(t) {
			return 0, false
		}
		f, err = strconv.ParseFloat(t, 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clampScore(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	case f == 0:
		return 0 // drops the sign of -0
	}
	return f
}

// stringify turns one list element into a string; nulls and blanks are skipped.
func stringify(it any) (string, bool) {
	var s string
	switch x := it.(type) {
	case nil:
		return "", false
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", false
		}
		s = string(b)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func candidateExcerpt(c Candidate) string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return excerpt(string(b))
}
