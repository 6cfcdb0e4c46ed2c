package models

import "time"

// VocabularyProgress tracks one learner's retention of one lemma.
// Created on first exposure, updated on every response, never deleted.
type VocabularyProgress struct {
	LearnerID      string     `json:"learner_id"`
	Language       Language   `json:"language"`
	Lemma          string     `json:"lemma"`
	Strength       float64    `json:"strength"`
	NextReview     *time.Time `json:"next_review"` // nil until first review
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	TimesCorrect   int        `json:"times_correct"`
	TimesIncorrect int        `json:"times_incorrect"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Due reports whether the item is due for review at now. An item never
// reviewed before is always due.
func (p *VocabularyProgress) Due(now time.Time) bool {
	return p.NextReview == nil || !p.NextReview.After(now)
}
