// Package match decides whether recognized text contains the target phrase
// with enough engine confidence to count as a hit.
package match

import (
	"strings"

	"github.com/ironsheep/screen-text-alert/internal/ocr"
)

// Outcome is the result of evaluating one frame's text.
type Outcome struct {
	// Matched reports whether the frame counts as a hit.
	Matched bool `json:"matched"`

	// AverageConfidence is the mean confidence of the tokens that overlap the
	// target, or nil when no usable confidence was found.
	AverageConfidence *float64 `json:"average_confidence,omitempty"`

	// Reason explains a miss that did not come from the text, such as a
	// missing target.
	Reason string `json:"reason,omitempty"`
}

// ReasonNoTarget marks outcomes evaluated without a target phrase.
const ReasonNoTarget = "no target"


// Criteria bundles the evaluation settings that stay fixed for a run.
type Criteria struct {
	Target        string
	CaseSensitive bool
	MinConfidence float64
}

// Evaluate applies c to a recognition result. An empty target never
// matches.
func (c Criteria) Evaluate(result *ocr.Result) Outcome {
	if c.Target == "" {
		return Outcome{Reason: ReasonNoTarget}
	}
	if result == nil {
		return Outcome{}
	}
	return Evaluate(result.FullText, c.Target, c.CaseSensitive, c.MinConfidence, result.Tokens)
}

// Evaluate reports whether target occurs in text and whether the engine was
// confident enough about it.
//
// The substring test runs on the full text, lower-cased on both sides unless
// caseSensitive is set. When it succeeds, every token that contains any
// whitespace-separated word of the target contributes its confidence; if the
// mean of those confidences is below minConfidence the match is rejected.
// Tokens without usable confidence are ignored. When no token contributes,
// the substring result stands and AverageConfidence is nil.
//
// Evaluate is a pure function.
func Evaluate(text, target string, caseSensitive bool, minConfidence float64, tokens []ocr.Token) Outcome {
	normalize := strings.ToLower
	if caseSensitive {
		normalize = func(s string) string { return s }
	}

	text = normalize(text)
	target = normalize(target)

	if !strings.Contains(text, target) {
		return Outcome{Matched: false}
	}

	words := strings.Fields(target)

	var sum float64
	var n int
	for _, tok := range tokens {
		if !tok.Usable() {
			continue
		}
		if containsAny(normalize(tok.Text), words) {
			sum += float64(tok.Confidence)
			n++
		}
	}

	if n == 0 {
		return Outcome{Matched: true}
	}

	avg := sum / float64(n)
	return Outcome{
		Matched:           avg >= minConfidence,
		AverageConfidence: &avg,
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
