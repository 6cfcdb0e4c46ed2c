package curriculum

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/models"
)

// Registry is an in-memory curriculum store keyed by language. It is
// populated once at startup and read-only afterwards, so lookups only take
// a read lock.
type Registry struct {
	mu       sync.RWMutex
	sets     map[models.Language][]VocabularySet
	concepts map[models.Language][]GrammarConcept
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sets:     make(map[models.Language][]VocabularySet),
		concepts: make(map[models.Language][]GrammarConcept),
	}
}

// languageFile is the on-disk YAML layout: one file per language.
type languageFile struct {
	Language        models.Language  `yaml:"language"`
	VocabularySets  []VocabularySet  `yaml:"vocabulary_sets"`
	GrammarConcepts []GrammarConcept `yaml:"grammar_concepts"`
}

// LoadDir reads every .yaml/.yml file in dir into a new Registry.
// A missing directory yields an empty registry rather than an error so the
// server can start without curriculum content.
func LoadDir(dir string) (*Registry, error) {
	log := logger.Default().WithPrefix("curriculum")
	r := NewRegistry()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("curriculum directory %s not found, starting empty", dir)
			return r, nil
		}
		return nil, fmt.Errorf("read curriculum dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var lf languageFile
		if err := yaml.Unmarshal(data, &lf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if !models.ValidLanguage(string(lf.Language)) {
			return nil, fmt.Errorf("parse %s: unknown language %q", path, lf.Language)
		}
		r.Add(lf.Language, lf.VocabularySets, lf.GrammarConcepts)
		log.Info("loaded %s: %d vocabulary sets, %d grammar concepts",
			name, len(lf.VocabularySets), len(lf.GrammarConcepts))
	}
	return r, nil
}

// Add appends sets and concepts for a language. Concepts are kept sorted by
// difficulty so callers see a stable graduated order.
func (r *Registry) Add(lang models.Language, sets []VocabularySet, concepts []GrammarConcept) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[lang] = append(r.sets[lang], sets...)
	r.concepts[lang] = append(r.concepts[lang], concepts...)
	sort.SliceStable(r.concepts[lang], func(i, j int) bool {
		return r.concepts[lang][i].DifficultyLevel < r.concepts[lang][j].DifficultyLevel
	})
}

// VocabularySets returns the vocabulary sets for a language in curriculum order.
func (r *Registry) VocabularySets(lang models.Language) []VocabularySet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]VocabularySet, len(r.sets[lang]))
	copy(out, r.sets[lang])
	return out
}

// GrammarConcepts returns the grammar concepts for a language sorted by
// difficulty level.
func (r *Registry) GrammarConcepts(lang models.Language) []GrammarConcept {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]GrammarConcept, len(r.concepts[lang]))
	copy(out, r.concepts[lang])
	return out
}
