package models

// Language identifies a supported target language.
type Language string

const (
	LanguageLatin Language = "latin"
	LanguageGreek Language = "greek"
)

// ValidLanguage reports whether s names a supported language.
func ValidLanguage(s string) bool {
	switch Language(s) {
	case LanguageLatin, LanguageGreek:
		return true
	}
	return false
}

// SessionType classifies a practice session.
type SessionType string

const (
	SessionLesson     SessionType = "lesson"
	SessionPractice   SessionType = "practice"
	SessionEvaluation SessionType = "evaluation"
	SessionPlacement  SessionType = "placement"
)

// RequiresState reports whether the session type needs an existing
// learner-language state (i.e. a completed placement) before starting.
func (t SessionType) RequiresState() bool {
	return t != SessionPlacement
}

// ValidSessionType reports whether s names a known session type.
func ValidSessionType(s string) bool {
	switch SessionType(s) {
	case SessionLesson, SessionPractice, SessionEvaluation, SessionPlacement:
		return true
	}
	return false
}

// MasteryLevel is the discrete 0-5 competence rating for one grammar concept.
type MasteryLevel int

const (
	MasteryUnknown    MasteryLevel = 0
	MasteryIntroduced MasteryLevel = 1
	MasteryPracticing MasteryLevel = 2
	MasteryFamiliar   MasteryLevel = 3
	MasteryProficient MasteryLevel = 4
	MasteryMastered   MasteryLevel = 5
)

func (m MasteryLevel) String() string {
	switch m {
	case MasteryUnknown:
		return "unknown"
	case MasteryIntroduced:
		return "introduced"
	case MasteryPracticing:
		return "practicing"
	case MasteryFamiliar:
		return "familiar"
	case MasteryProficient:
		return "proficient"
	case MasteryMastered:
		return "mastered"
	default:
		return "invalid"
	}
}

// ExerciseType tags the kind of exercise served in an activity.
type ExerciseType string

const (
	ExerciseDefinitionRecall      ExerciseType = "definition_recall"
	ExerciseDefinitionRecognition ExerciseType = "definition_recognition"
	ExerciseGrammarProbe          ExerciseType = "grammar_probe"
	ExerciseFillBlank             ExerciseType = "fill_blank"
)

// Capacity names one of the four tracked language skills.
type Capacity string

const (
	CapacityReading   Capacity = "reading"
	CapacityWriting   Capacity = "writing"
	CapacityListening Capacity = "listening"
	CapacitySpeaking  Capacity = "speaking"
)
