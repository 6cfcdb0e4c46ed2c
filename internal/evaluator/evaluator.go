package evaluator

import (
	"context"

	"github.com/marcusv/linguaflash/internal/models"
)

// CorrectThreshold is the score at or above which an answer counts as
// correct for progress-tracking purposes.
const CorrectThreshold = 0.8

// Request carries everything needed to grade one learner response.
type Request struct {
	ExerciseType models.ExerciseType
	Language     models.Language
	Prompt       string
	Expected     string
	Synonyms     []string
	Options      []string
	Response     string
}

// Verdict is the outcome of grading a response. Score is in [0, 1].
type Verdict struct {
	Score    float64
	Correct  bool
	Feedback string
}

// Evaluator grades learner responses. Implementations must be safe for
// concurrent use.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (*Verdict, error)
}
