// Package verdict turns an untrusted model completion into an assessment
// Record whose shape never varies.
//
// The pipeline is Extract → Validate → Derive; any failure short-circuits to
// Default. It performs no I/O and keeps no state, so it is safe to call from
// any goroutine.
package verdict

import "errors"

// Completion is what the transport hands over: either the raw text of the
// model's answer, or Upstream when no answer could be obtained.
type Completion struct {
	Text     string
	Upstream *UpstreamFailure
}

// Normalize runs the pipeline over raw completion text.
func Normalize(text string) Record {
	r, _ := Run(Completion{Text: text})
	return r
}

// Run runs the pipeline and also reports the failure it absorbed, if any.
// The returned Failure is nil when the record came from the model's answer.
func Run(c Completion) (Record, Failure) {
	if c.Upstream != nil {
		return Default(c.Upstream), c.Upstream
	}
	cand, err := Extract(c.Text)
	if err != nil {
		f := asFailure(err)
		return Default(f), f
	}
	v, err := Validate(cand)
	if err != nil {
		// quote what the model actually said, not the re-encoded candidate
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Excerpt = excerpt(c.Text)
		}
		f := asFailure(err)
		return Default(f), f
	}
	return Derive(v), nil
}

func asFailure(err error) Failure {
	var f Failure
	if errors.As(err, &f) {
		return f
	}
	return internalFailure{err: err}
}
