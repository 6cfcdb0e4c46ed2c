package practice

import (
	"fmt"
	"math/rand"

	"github.com/marcusv/linguaflash/internal/curriculum"
	"github.com/marcusv/linguaflash/internal/models"
)

// DistractorCount is how many wrong options a multiple-choice exercise gets.
const DistractorCount = 3

// DefinitionRecall builds a free-text exercise: show the lemma, the learner
// supplies the meaning. Empty options signal free-text input.
func DefinitionRecall(item curriculum.VocabularyItem, difficulty float64) models.Activity {
	return models.Activity{
		ExerciseType: models.ExerciseDefinitionRecall,
		Prompt:       fmt.Sprintf("What is the meaning of '%s'?", item.Lemma),
		Expected:     item.Definition,
		Synonyms:     item.Synonyms,
		Lemma:        item.Lemma,
		Difficulty:   difficulty,
	}
}

// DefinitionRecognition builds a multiple-choice exercise: show the lemma
// with the correct definition among distractors.
func DefinitionRecognition(item curriculum.VocabularyItem, distractors []string, difficulty float64, rng *rand.Rand) models.Activity {
	options := append([]string{item.Definition}, distractors...)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return models.Activity{
		ExerciseType: models.ExerciseDefinitionRecognition,
		Prompt:       fmt.Sprintf("Select the correct meaning of '%s':", item.Lemma),
		Expected:     item.Definition,
		Options:      options,
		Lemma:        item.Lemma,
		Difficulty:   difficulty,
	}
}

// GrammarProbeExercise builds a multiple-choice exercise asking which
// grammar category a concept belongs to.
func GrammarProbeExercise(concept curriculum.GrammarConcept, rng *rand.Rand) models.Activity {
	options := []string{concept.Category}
	for _, cat := range []string{"morphology", "syntax", "phonology", "prosody"} {
		if cat != concept.Category {
			options = append(options, cat)
		}
	}
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return models.Activity{
		ExerciseType: models.ExerciseGrammarProbe,
		Prompt:       fmt.Sprintf("Which area of grammar does '%s' belong to?", concept.Name),
		Expected:     concept.Category,
		Options:      options,
		ConceptName:  concept.Name,
		Difficulty:   float64(concept.DifficultyLevel),
	}
}

// Distractors picks up to count definitions different from correct.
func Distractors(correct string, all []string, count int, rng *rand.Rand) []string {
	var candidates []string
	for _, d := range all {
		if d != correct {
			candidates = append(candidates, d)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates
}
