package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/repository"
)

// LearnerService handles learner accounts and their per-language state
type LearnerService interface {
	Create(ctx context.Context, name string) (*models.Learner, error)
	Get(ctx context.Context, id string) (*models.Learner, error)
	List(ctx context.Context) ([]models.Learner, error)
	State(ctx context.Context, learnerID string, language models.Language) (*models.LearnerLanguageState, error)
}

type learnerService struct {
	learners repository.LearnerRepository
	states   repository.LearnerStateRepository
}

// NewLearnerService creates a new LearnerService
func NewLearnerService(learners repository.LearnerRepository, states repository.LearnerStateRepository) LearnerService {
	return &learnerService{learners: learners, states: states}
}

func (s *learnerService) Create(ctx context.Context, name string) (*models.Learner, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "must not be empty")
	}

	learner := models.Learner{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.learners.Insert(ctx, learner); err != nil {
		log.Error("failed to create learner: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("learner created: id=%s", learner.ID)
	return &learner, nil
}

func (s *learnerService) Get(ctx context.Context, id string) (*models.Learner, error) {
	learner, err := s.learners.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if learner == nil {
		return nil, errors.NewNotFoundError("learner", id)
	}
	return learner, nil
}

func (s *learnerService) List(ctx context.Context) ([]models.Learner, error) {
	learners, err := s.learners.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return learners, nil
}

// State returns the learner's standing in one language. A missing state is
// a normal negative result for learners who have not placed yet.
func (s *learnerService) State(ctx context.Context, learnerID string, language models.Language) (*models.LearnerLanguageState, error) {
	learner, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if learner == nil {
		return nil, errors.NewNotFoundError("learner", learnerID)
	}

	state, err := s.states.Get(ctx, learnerID, language)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if state == nil {
		return nil, errors.NewNotFoundError("state", learnerID+"/"+string(language))
	}
	return state, nil
}
