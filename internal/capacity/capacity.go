package capacity

import (
	"math"

	"github.com/marcusv/linguaflash/internal/models"
)

// Rating parameters. K starts high for new learners and settles as study
// time accumulates, stabilizing the level estimate.
const (
	KMax = 2.0
	KMin = 0.5
	// KDecayMinutes is the accumulated study time at which K reaches KMin.
	KDecayMinutes = 600
	// ScalingFactor spreads expected scores across the 0-10 level scale.
	ScalingFactor = 4.0
)

// exerciseCapacity maps exercise types to the capacity they train.
var exerciseCapacity = map[models.ExerciseType]models.Capacity{
	models.ExerciseDefinitionRecall:      models.CapacityReading,
	models.ExerciseDefinitionRecognition: models.CapacityReading,
	models.ExerciseGrammarProbe:          models.CapacityReading,
	models.ExerciseFillBlank:             models.CapacityWriting,
}

// ForExercise returns the capacity trained by an exercise type.
func ForExercise(t models.ExerciseType) models.Capacity {
	if c, ok := exerciseCapacity[t]; ok {
		return c
	}
	return models.CapacityReading
}

// ExpectedScore is the rating-style success probability of a learner at
// level facing an exercise at difficulty.
func ExpectedScore(level, difficulty float64) float64 {
	return 1.0 / (1.0 + math.Pow(10.0, (difficulty-level)/ScalingFactor))
}

// KFactor decays linearly with accumulated study minutes.
func KFactor(studyMinutes int) float64 {
	if studyMinutes >= KDecayMinutes {
		return KMin
	}
	ratio := float64(studyMinutes) / KDecayMinutes
	return KMax - (KMax-KMin)*ratio
}

// Apply adjusts the capacity level on state for one scored exercise and
// returns the updated copy. Scores above expectation raise the level,
// scores below lower it; levels never go negative.
func Apply(state models.LearnerLanguageState, c models.Capacity, difficulty, score float64) models.LearnerLanguageState {
	level := state.Level(c)
	expected := ExpectedScore(level, difficulty)
	k := KFactor(state.TotalStudyTimeMinutes)
	state.SetLevel(c, level+k*(score-expected))
	return state
}
