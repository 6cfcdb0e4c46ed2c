package models

import "time"

// VocabularyFilter narrows vocabulary progress queries.
type VocabularyFilter struct {
	LearnerID string
	Language  Language
	DueBefore *time.Time // nil-NextReview rows always match
	Limit     int
}

// SessionFilter narrows session queries.
type SessionFilter struct {
	LearnerID   string
	Language    Language
	SessionType SessionType
	ActiveOnly  bool
	Limit       int
}
