package models

import "time"

// Session is one bounded practice interaction for a learner in one language.
type Session struct {
	ID          string      `json:"id"`
	LearnerID   string      `json:"learner_id"`
	Language    Language    `json:"language"`
	SessionType SessionType `json:"session_type"`
	StartedAt   time.Time   `json:"started_at"`
	EndedAt     *time.Time  `json:"ended_at"` // nil while active
}

// Active reports whether the session has not yet ended.
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// Activity is a single served exercise. Empty Options means free-text
// input; non-empty means multiple choice. Transient: activities live only
// for the duration of their session.
type Activity struct {
	Index        int          `json:"index"`
	ExerciseType ExerciseType `json:"exercise_type"`
	Prompt       string       `json:"prompt"`
	Expected     string       `json:"-"` // never serialized to the learner
	Options      []string     `json:"options"`
	Synonyms     []string     `json:"-"`
	Lemma        string       `json:"-"` // set for vocabulary exercises
	ConceptName  string       `json:"-"` // set for grammar exercises
	Difficulty   float64      `json:"-"`
}

// MultipleChoice reports whether the activity offers options.
func (a *Activity) MultipleChoice() bool {
	return len(a.Options) > 0
}

// ActivityResult records the outcome of one answered activity.
type ActivityResult struct {
	Index        int          `json:"index"`
	ExerciseType ExerciseType `json:"exercise_type"`
	Response     string       `json:"response"`
	Score        float64      `json:"score"`
	Correct      bool         `json:"correct"`
	Feedback     string       `json:"feedback"`
	TimeTakenMs  int          `json:"time_taken_ms"`
}

// SessionSummary holds the statistics returned when a session ends.
type SessionSummary struct {
	SessionID       string      `json:"session_id"`
	SessionType     SessionType `json:"session_type"`
	TotalActivities int         `json:"total_activities"`
	CorrectCount    int         `json:"correct_count"`
	IncorrectCount  int         `json:"incorrect_count"`
	Accuracy        float64     `json:"accuracy"` // 0 when TotalActivities is 0
	AverageTimeMs   float64     `json:"average_time_ms"`
	StartedAt       time.Time   `json:"started_at"`
	EndedAt         time.Time   `json:"ended_at"`
}
