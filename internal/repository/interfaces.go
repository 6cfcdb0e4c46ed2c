package repository

import (
	"context"

	"github.com/marcusv/linguaflash/internal/models"
)

// LearnerRepository handles learner account data access
type LearnerRepository interface {
	Insert(ctx context.Context, learner models.Learner) error
	Get(ctx context.Context, id string) (*models.Learner, error)
	List(ctx context.Context) ([]models.Learner, error)
}

// LearnerStateRepository handles per-language learner state data access
type LearnerStateRepository interface {
	Get(ctx context.Context, learnerID string, language models.Language) (*models.LearnerLanguageState, error)
	Upsert(ctx context.Context, state models.LearnerLanguageState) error
}

// VocabularyRepository handles vocabulary progress data access
type VocabularyRepository interface {
	Get(ctx context.Context, learnerID string, language models.Language, lemma string) (*models.VocabularyProgress, error)
	List(ctx context.Context, filter models.VocabularyFilter) ([]models.VocabularyProgress, error)
	Upsert(ctx context.Context, progress models.VocabularyProgress) error
	CountStrongerThan(ctx context.Context, learnerID string, language models.Language, strength float64) (int, error)
}

// GrammarRepository handles grammar progress data access
type GrammarRepository interface {
	Get(ctx context.Context, learnerID string, language models.Language, concept string) (*models.GrammarProgress, error)
	ListByLearner(ctx context.Context, learnerID string, language models.Language) ([]models.GrammarProgress, error)
	Upsert(ctx context.Context, progress models.GrammarProgress) error
	CountAtLevel(ctx context.Context, learnerID string, language models.Language, level models.MasteryLevel) (int, error)
}

// SessionRepository handles session data access
type SessionRepository interface {
	Insert(ctx context.Context, session models.Session) error
	Update(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}
