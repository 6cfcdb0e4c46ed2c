package services

import (
	"context"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/marcusv/linguaflash/internal/curriculum"
	"github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/placement"
	"github.com/marcusv/linguaflash/internal/repository"
)

// levelScale maps a [0,1] placement sub-score onto the capacity level
// scale used by exercise difficulties (1-5).
const levelScale = 5.0

// PlacementService runs the placement flow: build probes, score responses,
// and seed the learner's language state.
type PlacementService interface {
	Probes(ctx context.Context, language models.Language) ([]models.PlacementProbe, error)
	Assess(ctx context.Context, learnerID string, language models.Language, responses []models.PlacementResponse) (*models.PlacementResult, error)
}

type placementService struct {
	learners   repository.LearnerRepository
	states     repository.LearnerStateRepository
	curriculum curriculum.Provider
	rng        *rand.Rand
}

// NewPlacementService creates a new PlacementService
func NewPlacementService(learners repository.LearnerRepository, states repository.LearnerStateRepository, provider curriculum.Provider, rng *rand.Rand) PlacementService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &placementService{learners: learners, states: states, curriculum: provider, rng: rng}
}

func (s *placementService) Probes(ctx context.Context, language models.Language) ([]models.PlacementProbe, error) {
	log := logger.FromContext(ctx)

	probes, err := placement.BuildProbes(
		s.curriculum.VocabularySets(language),
		s.curriculum.GrammarConcepts(language),
		s.rng,
	)
	if err != nil {
		if stderrors.Is(err, placement.ErrNoCurriculumData) {
			return nil, errors.NewNoCurriculumDataError(string(language))
		}
		log.Error("failed to build placement probes: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("built %d placement probes for %s", len(probes), language)
	return probes, nil
}

// Assess scores a finished probe battery and creates (or refreshes) the
// learner's language state from the result.
func (s *placementService) Assess(ctx context.Context, learnerID string, language models.Language, responses []models.PlacementResponse) (*models.PlacementResult, error) {
	log := logger.FromContext(ctx)

	learner, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if learner == nil {
		return nil, errors.NewNotFoundError("learner", learnerID)
	}

	if len(s.curriculum.VocabularySets(language)) == 0 && len(s.curriculum.GrammarConcepts(language)) == 0 {
		return nil, errors.NewNoCurriculumDataError(string(language))
	}

	result := placement.Score(responses)

	state, err := s.states.Get(ctx, learnerID, language)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	now := time.Now().UTC()
	if state == nil {
		state = &models.LearnerLanguageState{
			LearnerID: learnerID,
			Language:  language,
			CreatedAt: now,
		}
	}

	state.CurrentUnit = result.StartingUnit
	state.ReadingLevel = result.ReadingScore * levelScale
	state.WritingLevel = result.GrammarScore * levelScale
	// Placement never probes listening or speaking; start them at half
	// the overall estimate.
	state.ListeningLevel = result.TotalScore * levelScale / 2
	state.SpeakingLevel = result.TotalScore * levelScale / 2

	if err := s.states.Upsert(ctx, *state); err != nil {
		log.Error("failed to persist placement state: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("placement assessed: learner=%s, language=%s, total=%.2f, unit=%d",
		learnerID, language, result.TotalScore, result.StartingUnit)
	return &result, nil
}
