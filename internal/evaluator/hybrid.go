package evaluator

import "context"

// hybridEvaluator routes free-text answers to a model-backed evaluator
// and keeps multiple-choice answers on the rule evaluator, where an
// option click is graded exactly.
type hybridEvaluator struct {
	rule  Evaluator
	model Evaluator
}

// NewHybrid returns an Evaluator that dispatches per exercise type: the
// model evaluator for exercises ForExercise accepts, the rule evaluator
// for everything else.
func NewHybrid(rule, model Evaluator) Evaluator {
	return &hybridEvaluator{rule: rule, model: model}
}

func (h *hybridEvaluator) Evaluate(ctx context.Context, req Request) (*Verdict, error) {
	if ForExercise(req.ExerciseType) {
		return h.model.Evaluate(ctx, req)
	}
	return h.rule.Evaluate(ctx, req)
}
