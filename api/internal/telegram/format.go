package telegram

import (
	"fmt"
	"strings"

	"forrealscan/api/internal/scan"
	"forrealscan/api/internal/verdict"
)

var labelText = map[verdict.Label]string{
	verdict.LabelLikelyHuman: "🟢 Likely human-made",
	verdict.LabelUncertain:   "🟡 Uncertain",
	verdict.LabelLikelyAI:    "🔴 Likely AI-generated",
}

// FormatResult renders a scan result as a plain-text chat message.
func FormatResult(res scan.Result) string {
	rec := res.Record
	var b strings.Builder

	label := labelText[rec.Label]
	if label == "" {
		label = string(rec.Label)
	}
	fmt.Fprintf(&b, "%s\nAI likelihood: %s/100 (confidence: %s)\n", label, formatScore(rec.Score), rec.Confidence)
	if rec.Category != "" && rec.Category != verdict.CategoryUnclassified {
		fmt.Fprintf(&b, "Category: %s\n", rec.Category)
	}
	writeList(&b, "Reasons", rec.Reasons)
	writeList(&b, "Artifacts", rec.Artifacts)
	if rec.Advice != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", rec.Advice)
	}
	if res.Failure != nil {
		b.WriteString("\n⚠️ The model's answer could not be used; this is a neutral fallback verdict.\n")
	}
	if res.Engine != "" {
		fmt.Fprintf(&b, "\nengine: %s", res.Engine)
		if res.Model != "" {
			fmt.Fprintf(&b, " (%s)", res.Model)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "• %s\n", it)
	}
}

func formatScore(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}
