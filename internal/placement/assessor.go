package placement

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/marcusv/linguaflash/internal/curriculum"
	"github.com/marcusv/linguaflash/internal/models"
)

// ErrNoCurriculumData is returned when probe construction is attempted with
// neither vocabulary sets nor grammar concepts. Callers must not score an
// empty battery.
var ErrNoCurriculumData = errors.New("placement: no curriculum data")

// MaxProbesPerType caps each probe category.
const MaxProbesPerType = 5

// MaxStartingUnit is the highest unit the step function can recommend.
const MaxStartingUnit = 9

// Weights combining the vocabulary and grammar sub-scores into the derived
// reading score. Both are non-negative so the reading score is monotone in
// each sub-score.
const (
	readingVocabWeight   = 0.6
	readingGrammarWeight = 0.4
)

var grammarCategories = []string{"morphology", "syntax", "phonology", "prosody"}

// BuildProbes assembles the placement battery: up to five vocabulary probes
// (one per set in curriculum order, difficulty matching position) followed
// by up to five grammar probes (the first concept found at each difficulty
// level 1-5; levels with no concept are skipped). Probe order is fixed;
// only the options within each probe are shuffled, with CorrectIndex
// tracking the answer.
func BuildProbes(sets []curriculum.VocabularySet, concepts []curriculum.GrammarConcept, rng *rand.Rand) ([]models.PlacementProbe, error) {
	if len(sets) == 0 && len(concepts) == 0 {
		return nil, ErrNoCurriculumData
	}

	var probes []models.PlacementProbe

	for i, set := range sets {
		if i >= MaxProbesPerType {
			break
		}
		probes = append(probes, vocabularyProbe(set, i+1, rng))
	}

	for difficulty := 1; difficulty <= MaxProbesPerType; difficulty++ {
		for _, concept := range concepts {
			if concept.DifficultyLevel != difficulty {
				continue
			}
			probes = append(probes, grammarProbe(concept, difficulty, rng))
			break
		}
	}

	return probes, nil
}

func vocabularyProbe(set curriculum.VocabularySet, difficulty int, rng *rand.Rand) models.PlacementProbe {
	count := set.ItemCount()
	correct := strconv.Itoa(count)
	options := []string{correct}
	for _, alt := range []int{count/2 + 1, count + 10, count*2 + 3} {
		candidate := strconv.Itoa(alt)
		if !contains(options, candidate) {
			options = append(options, candidate)
		}
	}
	idx := shuffleOptions(options, 0, rng)
	return models.PlacementProbe{
		ProbeType:    models.ProbeVocabulary,
		Difficulty:   difficulty,
		ItemID:       set.SetName,
		Prompt:       fmt.Sprintf("How many words does the '%s' vocabulary set contain?", set.SetName),
		Options:      options,
		CorrectIndex: idx,
	}
}

func grammarProbe(concept curriculum.GrammarConcept, difficulty int, rng *rand.Rand) models.PlacementProbe {
	options := []string{concept.Category}
	for _, cat := range grammarCategories {
		if cat != concept.Category {
			options = append(options, cat)
		}
	}
	idx := shuffleOptions(options, 0, rng)
	return models.PlacementProbe{
		ProbeType:    models.ProbeGrammar,
		Difficulty:   difficulty,
		ItemID:       concept.Name,
		Prompt:       fmt.Sprintf("Which area of grammar does '%s' belong to?", concept.Name),
		Options:      options,
		CorrectIndex: idx,
	}
}

// shuffleOptions shuffles options in place and returns the post-shuffle
// index of the element initially at correctIdx.
func shuffleOptions(options []string, correctIdx int, rng *rand.Rand) int {
	correct := options[correctIdx]
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	for i, opt := range options {
		if opt == correct {
			return i
		}
	}
	return 0
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// Score partitions responses by probe type and computes the placement
// result. Sub-scores are the fraction correct within each partition (zero
// for an empty partition). The reading score is a weighted combination of
// the vocabulary and grammar sub-scores, the total is the mean of all
// three, and the starting unit is a monotone step function of the total.
func Score(responses []models.PlacementResponse) models.PlacementResult {
	var vocabCorrect, vocabTotal, grammarCorrect, grammarTotal int
	for _, r := range responses {
		switch r.ProbeType {
		case models.ProbeVocabulary:
			vocabTotal++
			if r.Correct {
				vocabCorrect++
			}
		case models.ProbeGrammar:
			grammarTotal++
			if r.Correct {
				grammarCorrect++
			}
		}
	}

	vocabScore := fraction(vocabCorrect, vocabTotal)
	grammarScore := fraction(grammarCorrect, grammarTotal)
	readingScore := readingVocabWeight*vocabScore + readingGrammarWeight*grammarScore
	total := (vocabScore + grammarScore + readingScore) / 3.0

	return models.PlacementResult{
		TotalScore:      total,
		VocabularyScore: vocabScore,
		GrammarScore:    grammarScore,
		ReadingScore:    readingScore,
		StartingUnit:    StartingUnit(total),
	}
}

// StartingUnit maps a normalized score to a curriculum unit. The function
// is monotone non-decreasing, returns unit 1 at zero, and reaches
// MaxStartingUnit at a perfect score.
func StartingUnit(score float64) int {
	switch {
	case score >= 0.80:
		return MaxStartingUnit
	case score >= 0.60:
		return 7
	case score >= 0.30:
		return 4
	case score >= 0.10:
		return 2
	default:
		return 1
	}
}

func fraction(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
