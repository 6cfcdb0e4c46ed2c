package models

import "time"

// GrammarProgress tracks one learner's mastery of one grammar concept.
// Created on first exposure, updated on every practice event, never deleted.
type GrammarProgress struct {
	LearnerID       string       `json:"learner_id"`
	Language        Language     `json:"language"`
	ConceptName     string       `json:"concept_name"`
	MasteryLevel    MasteryLevel `json:"mastery_level"`
	TimesPracticed  int          `json:"times_practiced"`
	RecentErrorRate float64      `json:"recent_error_rate"` // EMA in [0,1]
	LastPracticedAt *time.Time   `json:"last_practiced_at"`
	CreatedAt       time.Time    `json:"created_at"`
}
