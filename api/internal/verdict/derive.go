package verdict

// LabelFor maps a score to its label: ≤30 human, ≥70 AI, uncertain between.
func LabelFor(score float64) Label {
	switch {
	case score <= 30:
		return LabelLikelyHuman
	case score >= 70:
		return LabelLikelyAI
	}
	return LabelUncertain
}

// ConfidenceFor grows with the distance from 50: ≤20 or ≥80 is high,
// ≤40 or ≥60 medium, anything closer to the midpoint low.
func ConfidenceFor(score float64) Confidence {
	switch {
	case score <= 20 || score >= 80:
		return ConfidenceHigh
	case score <= 40 || score >= 60:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// Derive completes a validated payload. Fields the model supplied are kept
// as they are; only absent ones are computed.
func Derive(v Validated) Record {
	r := Record{
		Score:      v.Score,
		Label:      v.Label,
		Confidence: v.Confidence,
		Category:   v.Category,
		Reasons:    cloneStrings(v.Reasons),
		Artifacts:  cloneStrings(v.Artifacts),
		Advice:     v.Advice,
	}
	if r.Label == "" {
		r.Label = LabelFor(r.Score)
	}
	if r.Confidence == "" {
		r.Confidence = ConfidenceFor(r.Score)
	}
	if r.Category == "" {
		r.Category = CategoryUnclassified
	}
	if r.Advice == "" {
		r.Advice = DefaultAdvice
	}
	return r
}
