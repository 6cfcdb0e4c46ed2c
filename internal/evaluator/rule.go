package evaluator

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/marcusv/linguaflash/internal/models"
)

// stripMarks removes combining marks after NFD decomposition, so macrons,
// accents and breathing marks never cause a wrong-answer verdict.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, collapses whitespace and strips diacritics.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return s
}

// RuleEvaluator grades responses deterministically: a response is correct
// when it matches the expected answer or a listed synonym after
// normalization.
type RuleEvaluator struct{}

// NewRuleEvaluator returns a deterministic evaluator.
func NewRuleEvaluator() *RuleEvaluator {
	return &RuleEvaluator{}
}

func (e *RuleEvaluator) Evaluate(_ context.Context, req Request) (*Verdict, error) {
	resp := Normalize(req.Response)
	if resp == "" {
		return incorrect(req), nil
	}

	candidates := []string{req.Expected}
	if req.ExerciseType == models.ExerciseDefinitionRecall {
		candidates = append(candidates, req.Synonyms...)
		// "earth, land" style definitions accept any single gloss.
		for _, part := range strings.Split(req.Expected, ",") {
			candidates = append(candidates, strings.TrimSpace(part))
		}
	}
	for _, c := range candidates {
		if c != "" && Normalize(c) == resp {
			return &Verdict{Score: 1.0, Correct: true, Feedback: "Correct!"}, nil
		}
	}
	return incorrect(req), nil
}

func incorrect(req Request) *Verdict {
	return &Verdict{
		Score:    0.0,
		Correct:  false,
		Feedback: fmt.Sprintf("Expected: %s", req.Expected),
	}
}
