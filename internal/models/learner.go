package models

import "time"

// Learner is an account-level record. The engine only needs its ID; the
// name exists so the service is usable end to end.
type Learner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// LearnerLanguageState holds a learner's standing in one language.
// Exactly one record exists per (learner, language) pair, created lazily
// on the first placement or session and never deleted.
type LearnerLanguageState struct {
	LearnerID               string     `json:"learner_id"`
	Language                Language   `json:"language"`
	ReadingLevel            float64    `json:"reading_level"`
	WritingLevel            float64    `json:"writing_level"`
	ListeningLevel          float64    `json:"listening_level"`
	SpeakingLevel           float64    `json:"speaking_level"`
	ActiveVocabularySize    int        `json:"active_vocabulary_size"`
	GrammarConceptsMastered int        `json:"grammar_concepts_mastered"`
	CurrentUnit             int        `json:"current_unit"`
	LastSessionAt           *time.Time `json:"last_session_at"`
	TotalStudyTimeMinutes   int        `json:"total_study_time_minutes"`
	CreatedAt               time.Time  `json:"created_at"`
}

// Level returns the level for one capacity.
func (s *LearnerLanguageState) Level(c Capacity) float64 {
	switch c {
	case CapacityReading:
		return s.ReadingLevel
	case CapacityWriting:
		return s.WritingLevel
	case CapacityListening:
		return s.ListeningLevel
	case CapacitySpeaking:
		return s.SpeakingLevel
	}
	return 0
}

// SetLevel updates the level for one capacity. Unknown capacities are ignored.
func (s *LearnerLanguageState) SetLevel(c Capacity, v float64) {
	if v < 0 {
		v = 0
	}
	switch c {
	case CapacityReading:
		s.ReadingLevel = v
	case CapacityWriting:
		s.WritingLevel = v
	case CapacityListening:
		s.ListeningLevel = v
	case CapacitySpeaking:
		s.SpeakingLevel = v
	}
}

// WeakestCapacity returns the capacity with the lowest level. Ties resolve
// in canonical order: reading, writing, listening, speaking.
func (s *LearnerLanguageState) WeakestCapacity() Capacity {
	weakest := CapacityReading
	lowest := s.ReadingLevel
	for _, c := range []Capacity{CapacityWriting, CapacityListening, CapacitySpeaking} {
		if lv := s.Level(c); lv < lowest {
			weakest, lowest = c, lv
		}
	}
	return weakest
}
