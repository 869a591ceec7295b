package verdict

import "strings"

// Default returns the neutral record for a failure. It is total: a nil
// failure still produces a valid record.
func Default(f Failure) Record {
	reason := internalFailure{}.Reason()
	if f != nil {
		if s := strings.TrimSpace(f.Reason()); s != "" {
			reason = s
		}
	}
	return Record{
		Score:      NeutralScore,
		Label:      LabelUncertain,
		Confidence: ConfidenceLow,
		Category:   CategoryUnclassified,
		Reasons:    []string{reason},
		Artifacts:  []string{},
		Advice:     DefaultAdvice,
	}
}
