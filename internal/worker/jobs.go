package worker

import (
	"context"
	"time"

	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/mastery"
	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/repository"
)

// SessionReaper ends sessions left idle past the configured timeout.
// Declared here rather than importing the session package so jobs stay
// free of import cycles.
type SessionReaper interface {
	ReapIdle(ctx context.Context) int
}

// ReapSessionsJob closes idle sessions.
type ReapSessionsJob struct {
	Sessions SessionReaper
}

func (j *ReapSessionsJob) Name() string { return "reap_idle_sessions" }

func (j *ReapSessionsJob) Run(ctx context.Context) error {
	if n := j.Sessions.ReapIdle(ctx); n > 0 {
		logger.FromContext(ctx).Info("reaped %d idle sessions", n)
	}
	return nil
}

// RegressionSweepJob walks every learner's grammar progress and applies
// the inactivity regression rule, so skills decay even for learners who
// stop showing up.
type RegressionSweepJob struct {
	Learners repository.LearnerRepository
	Grammar  repository.GrammarRepository
	Now      func() time.Time
}

func (j *RegressionSweepJob) Name() string { return "grammar_regression_sweep" }

func (j *RegressionSweepJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	now := j.Now()

	learners, err := j.Learners.List(ctx)
	if err != nil {
		return err
	}

	regressed := 0
	for _, l := range learners {
		for _, lang := range []models.Language{models.LanguageLatin, models.LanguageGreek} {
			rows, err := j.Grammar.ListByLearner(ctx, l.ID, lang)
			if err != nil {
				return err
			}
			for _, g := range rows {
				updated := mastery.CheckRegression(g, now)
				if updated.MasteryLevel == g.MasteryLevel {
					continue
				}
				if err := j.Grammar.Upsert(ctx, updated); err != nil {
					return err
				}
				regressed++
			}
		}
	}
	if regressed > 0 {
		log.Info("regressed %d grammar concepts for inactivity", regressed)
	}
	return nil
}
