package services

import (
	"context"

	"github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/session"
)

// SessionService fronts the session manager and validates request input
type SessionService interface {
	Start(ctx context.Context, learnerID string, language, sessionType string) (*models.Session, error)
	Next(ctx context.Context, sessionID string) (*models.Activity, *models.SessionSummary, error)
	Submit(ctx context.Context, sessionID, response string, timeTakenMs int) (*models.ActivityResult, error)
	End(ctx context.Context, sessionID string) (*models.SessionSummary, error)
	Recommend(ctx context.Context, learnerID string, language string) (models.SessionType, models.Capacity, error)
}

type sessionService struct {
	manager *session.Manager
}

// NewSessionService creates a new SessionService
func NewSessionService(manager *session.Manager) SessionService {
	return &sessionService{manager: manager}
}

func (s *sessionService) Start(ctx context.Context, learnerID string, language, sessionType string) (*models.Session, error) {
	if !models.ValidLanguage(language) {
		return nil, errors.NewValidationError("language", "must be latin or greek")
	}
	if !models.ValidSessionType(sessionType) {
		return nil, errors.NewValidationError("session_type", "must be lesson, practice, evaluation or placement")
	}
	return s.manager.Start(ctx, learnerID, models.Language(language), models.SessionType(sessionType))
}

func (s *sessionService) Next(ctx context.Context, sessionID string) (*models.Activity, *models.SessionSummary, error) {
	return s.manager.Next(ctx, sessionID)
}

func (s *sessionService) Submit(ctx context.Context, sessionID, response string, timeTakenMs int) (*models.ActivityResult, error) {
	if timeTakenMs < 0 {
		return nil, errors.NewValidationError("time_taken_ms", "must not be negative")
	}
	return s.manager.Submit(ctx, sessionID, response, timeTakenMs)
}

func (s *sessionService) End(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	return s.manager.End(ctx, sessionID)
}

func (s *sessionService) Recommend(ctx context.Context, learnerID string, language string) (models.SessionType, models.Capacity, error) {
	if !models.ValidLanguage(language) {
		return "", "", errors.NewValidationError("language", "must be latin or greek")
	}
	return s.manager.Recommend(ctx, learnerID, models.Language(language))
}
