package curriculum

import (
	"github.com/marcusv/linguaflash/internal/models"
)

// VocabularyItem is one curriculum word as authored.
type VocabularyItem struct {
	Lemma        string   `yaml:"lemma" json:"lemma"`
	Definition   string   `yaml:"definition" json:"definition"`
	PartOfSpeech string   `yaml:"part_of_speech" json:"part_of_speech"`
	Synonyms     []string `yaml:"synonyms" json:"synonyms,omitempty"`
}

// VocabularySet is an ordered group of vocabulary items. Sets are listed in
// curriculum order; a set's position doubles as its difficulty tier.
type VocabularySet struct {
	SetName  string           `yaml:"set" json:"set_name"`
	Language models.Language  `yaml:"language" json:"language"`
	Items    []VocabularyItem `yaml:"items" json:"-"`
}

// ItemCount returns the number of items in the set.
func (s *VocabularySet) ItemCount() int {
	return len(s.Items)
}

// GrammarConcept is one grammar topic as authored.
type GrammarConcept struct {
	Name              string   `yaml:"name" json:"name"`
	Category          string   `yaml:"category" json:"category"`
	Subcategory       string   `yaml:"subcategory" json:"subcategory"`
	DifficultyLevel   int      `yaml:"difficulty" json:"difficulty_level"`
	PrerequisiteNames []string `yaml:"prerequisites" json:"prerequisite_names"`
}

// Provider supplies loaded curriculum data to the engine. The engine never
// parses curriculum files itself; it consumes already-loaded sequences.
type Provider interface {
	VocabularySets(language models.Language) []VocabularySet
	GrammarConcepts(language models.Language) []GrammarConcept
}
