package services

import (
	"context"

	"github.com/marcusv/linguaflash/internal/curriculum"
	"github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/models"
)

// VocabularySetSummary is the curriculum view exposed to callers: set
// names and sizes, never the answers.
type VocabularySetSummary struct {
	SetName   string          `json:"set_name"`
	Language  models.Language `json:"language"`
	ItemCount int             `json:"item_count"`
}

// CurriculumService exposes read-only curriculum summaries
type CurriculumService interface {
	VocabularySummaries(ctx context.Context, language models.Language) ([]VocabularySetSummary, error)
	GrammarConcepts(ctx context.Context, language models.Language) ([]curriculum.GrammarConcept, error)
}

type curriculumService struct {
	curriculum curriculum.Provider
}

// NewCurriculumService creates a new CurriculumService
func NewCurriculumService(provider curriculum.Provider) CurriculumService {
	return &curriculumService{curriculum: provider}
}

func (s *curriculumService) VocabularySummaries(_ context.Context, language models.Language) ([]VocabularySetSummary, error) {
	sets := s.curriculum.VocabularySets(language)
	if len(sets) == 0 {
		return nil, errors.NewNotFoundError("vocabulary curriculum", language)
	}

	summaries := make([]VocabularySetSummary, 0, len(sets))
	for _, set := range sets {
		summaries = append(summaries, VocabularySetSummary{
			SetName:   set.SetName,
			Language:  language,
			ItemCount: set.ItemCount(),
		})
	}
	return summaries, nil
}

func (s *curriculumService) GrammarConcepts(_ context.Context, language models.Language) ([]curriculum.GrammarConcept, error) {
	concepts := s.curriculum.GrammarConcepts(language)
	if len(concepts) == 0 {
		return nil, errors.NewNotFoundError("grammar curriculum", language)
	}
	return concepts, nil
}
