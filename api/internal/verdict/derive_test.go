package verdict

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestLabelFor_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{0, LabelLikelyHuman},
		{29.9, LabelLikelyHuman},
		{30, LabelLikelyHuman},
		{30.1, LabelUncertain},
		{31, LabelUncertain},
		{50, LabelUncertain},
		{69, LabelUncertain},
		{69.9, LabelUncertain},
		{70, LabelLikelyAI},
		{71, LabelLikelyAI},
		{100, LabelLikelyAI},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, LabelFor(tt.score))
		})
	}
}

func TestConfidenceFor_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Confidence
	}{
		{0, ConfidenceHigh},
		{20, ConfidenceHigh},
		{21, ConfidenceMedium},
		{39, ConfidenceMedium},
		{40, ConfidenceMedium},
		{41, ConfidenceLow},
		{50, ConfidenceLow},
		{59, ConfidenceLow},
		{60, ConfidenceMedium},
		{61, ConfidenceMedium},
		{79, ConfidenceMedium},
		{80, ConfidenceHigh},
		{100, ConfidenceHigh},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, ConfidenceFor(tt.score))
		})
	}
}

func TestThresholdsAreSymmetric(t *testing.T) {
	for s := 0.0; s <= 50; s += 0.5 {
		mirror := 100 - s
		assert.Equal(t, ConfidenceFor(s), ConfidenceFor(mirror), "score %v vs %v", s, mirror)

		switch LabelFor(s) {
		case LabelLikelyHuman:
			assert.Equal(t, LabelLikelyAI, LabelFor(mirror), "score %v", mirror)
		case LabelUncertain:
			assert.Equal(t, LabelUncertain, LabelFor(mirror), "score %v", mirror)
		default:
			t.Fatalf("score %v below midpoint labelled %s", s, LabelFor(s))
		}
	}
}

func TestDerive_FillsOnlyAbsentFields(t *testing.T) {
	got := Derive(Validated{Score: 85, Reasons: []string{"plastic skin"}, Artifacts: []string{}})
	want := Record{
		Score:      85,
		Label:      LabelLikelyAI,
		Confidence: ConfidenceHigh,
		Category:   CategoryUnclassified,
		Reasons:    []string{"plastic skin"},
		Artifacts:  []string{},
		Advice:     DefaultAdvice,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Derive() mismatch (-want +got):\n%s", diff)
	}

	kept := Derive(Validated{
		Score:      85,
		Label:      LabelUncertain,
		Confidence: ConfidenceLow,
		Category:   "landscape",
		Advice:     "Compare with other shots of the scene.",
	})
	assert.Equal(t, LabelUncertain, kept.Label)
	assert.Equal(t, ConfidenceLow, kept.Confidence)
	assert.Equal(t, "landscape", kept.Category)
	assert.Equal(t, "Compare with other shots of the scene.", kept.Advice)
	assert.NotNil(t, kept.Reasons)
	assert.NotNil(t, kept.Artifacts)
}

func TestDerive_DoesNotAliasInput(t *testing.T) {
	reasons := []string{"a"}
	r := Derive(Validated{Score: 10, Reasons: reasons})
	reasons[0] = "changed"
	assert.Equal(t, []string{"a"}, r.Reasons)
}
