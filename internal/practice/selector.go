package practice

import (
	"math/rand"
	"sort"
	"time"

	"github.com/marcusv/linguaflash/internal/curriculum"
	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/srs"
)

// ScaffoldThreshold is the estimated recall probability below which a
// vocabulary review is served as multiple choice instead of free recall.
const ScaffoldThreshold = 0.5

// Selector picks the next practice activity for a learner. Due vocabulary
// reviews always win; grammar practice fills in once the review queue is
// empty; a nil result means the learner has nothing left to practice.
type Selector struct {
	Sets     []curriculum.VocabularySet
	Concepts []curriculum.GrammarConcept
	RNG      *rand.Rand
}

// NewSelector returns a Selector over the given curriculum.
func NewSelector(sets []curriculum.VocabularySet, concepts []curriculum.GrammarConcept, rng *rand.Rand) *Selector {
	return &Selector{Sets: sets, Concepts: concepts, RNG: rng}
}

// Select returns the next activity, or nil when neither a due vocabulary
// item nor an unmastered grammar concept remains. due must already be in
// review-priority order (most overdue first).
func (s *Selector) Select(now time.Time, due []models.VocabularyProgress, grammar []models.GrammarProgress) *models.Activity {
	for _, p := range due {
		item, difficulty, ok := s.lookupLemma(p.Lemma)
		if !ok {
			// Progress rows can outlive a curriculum edit. Skip them
			// rather than prompting for a lemma we cannot grade.
			continue
		}
		a := s.vocabularyExercise(p, item, difficulty, now)
		return &a
	}

	if concept, ok := s.nextGrammarConcept(grammar); ok {
		a := GrammarProbeExercise(concept, s.RNG)
		return &a
	}
	return nil
}

// vocabularyExercise picks the exercise format from the memory model:
// while estimated recall is weak the item is served as scaffolded
// multiple choice, once memory is strong enough the learner must
// produce the answer unaided. Recall is the fallback when the
// curriculum cannot supply enough distractors.
func (s *Selector) vocabularyExercise(p models.VocabularyProgress, item curriculum.VocabularyItem, difficulty float64, now time.Time) models.Activity {
	distractors := Distractors(item.Definition, s.allDefinitions(), DistractorCount, s.RNG)
	if len(distractors) >= DistractorCount && srs.RecallProbability(&p, now) < ScaffoldThreshold {
		return DefinitionRecognition(item, distractors, difficulty, s.RNG)
	}
	return DefinitionRecall(item, difficulty)
}

// lookupLemma finds a lemma in the curriculum. Difficulty is the 1-based
// position of the containing set, so later sets probe harder material.
func (s *Selector) lookupLemma(lemma string) (curriculum.VocabularyItem, float64, bool) {
	for i, set := range s.Sets {
		for _, item := range set.Items {
			if item.Lemma == lemma {
				return item, float64(i + 1), true
			}
		}
	}
	return curriculum.VocabularyItem{}, 0, false
}

func (s *Selector) allDefinitions() []string {
	var defs []string
	for _, set := range s.Sets {
		for _, item := range set.Items {
			defs = append(defs, item.Definition)
		}
	}
	return defs
}

// nextGrammarConcept picks the unmastered concept with the fewest practice
// attempts, breaking ties by lowest mastery level, then curriculum order.
func (s *Selector) nextGrammarConcept(progress []models.GrammarProgress) (curriculum.GrammarConcept, bool) {
	byName := make(map[string]models.GrammarProgress, len(progress))
	for _, p := range progress {
		byName[p.ConceptName] = p
	}

	type candidate struct {
		concept   curriculum.GrammarConcept
		practiced int
		mastery   models.MasteryLevel
		order     int
	}
	var candidates []candidate
	for i, c := range s.Concepts {
		p, seen := byName[c.Name]
		if seen && p.MasteryLevel >= models.MasteryMastered {
			continue
		}
		candidates = append(candidates, candidate{
			concept:   c,
			practiced: p.TimesPracticed,
			mastery:   p.MasteryLevel,
			order:     i,
		})
	}
	if len(candidates) == 0 {
		return curriculum.GrammarConcept{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].practiced != candidates[j].practiced {
			return candidates[i].practiced < candidates[j].practiced
		}
		if candidates[i].mastery != candidates[j].mastery {
			return candidates[i].mastery < candidates[j].mastery
		}
		return candidates[i].order < candidates[j].order
	})
	return candidates[0].concept, true
}
