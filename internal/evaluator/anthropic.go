package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/marcusv/linguaflash/internal/models"
)

const anthropicMaxTokens = 512

const gradingSystemPrompt = `You are grading a classical-language exercise.
Respond with a single JSON object and nothing else:
{"score": <integer 0-5>, "max_score": 5, "feedback": "<one short sentence>"}`

// AnthropicEvaluator grades free-text responses with Claude, for answers
// that a string comparison cannot judge fairly.
type AnthropicEvaluator struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicEvaluator builds an evaluator backed by the Anthropic API.
func NewAnthropicEvaluator(apiKey, model string) (*AnthropicEvaluator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicEvaluator{client: &client, model: model}, nil
}

func (e *AnthropicEvaluator) Evaluate(ctx context.Context, req Request) (*Verdict, error) {
	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: gradingSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(gradingUserPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic evaluate: %w", err)
	}
	return parseGrading(messageText(msg))
}

func gradingUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Language: %s\n", req.Language)
	fmt.Fprintf(&b, "Exercise: %s\n", req.Prompt)
	fmt.Fprintf(&b, "Expected answer: %s\n", req.Expected)
	if len(req.Synonyms) > 0 {
		fmt.Fprintf(&b, "Also acceptable: %s\n", strings.Join(req.Synonyms, "; "))
	}
	fmt.Fprintf(&b, "Learner response: %s\n", req.Response)
	b.WriteString("Grade the response on meaning, not exact wording.")
	return b.String()
}

func messageText(msg *anthropic.Message) string {
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

// parseGrading decodes the JSON grading object. Scores normalize to [0, 1]
// and the response counts as correct at 80% of the maximum or better.
func parseGrading(text string) (*Verdict, error) {
	var data struct {
		Score    float64 `json:"score"`
		MaxScore float64 `json:"max_score"`
		Feedback string  `json:"feedback"`
	}
	text = strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("parse grading response: %w", err)
	}
	if data.MaxScore <= 0 {
		data.MaxScore = 5
	}
	score := data.Score / data.MaxScore
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return &Verdict{
		Score:    score,
		Correct:  score >= CorrectThreshold,
		Feedback: data.Feedback,
	}, nil
}

// ForExercise reports whether the model-backed evaluator should handle the
// given exercise type. Multiple-choice answers never need it.
func ForExercise(t models.ExerciseType) bool {
	return t == models.ExerciseDefinitionRecall || t == models.ExerciseFillBlank
}
