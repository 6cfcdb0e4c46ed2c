package mastery

import (
	"time"

	"github.com/marcusv/linguaflash/internal/models"
)

// ErrorRateAlpha is the EMA smoothing factor for recent_error_rate.
const ErrorRateAlpha = 0.1

// HighErrorBound triggers a one-step demotion once enough evidence exists.
const HighErrorBound = 0.60

// DemotionMinAttempts is the evidence floor before a demotion can fire.
const DemotionMinAttempts = 5

// InactivityDays is how long a concept can go unpracticed before decay
// checks apply.
const InactivityDays = 14

// promotionRule gates the step up to a given mastery level.
type promotionRule struct {
	minAttempts int
	maxErrRate  float64
}

// promotionRules[level] is the requirement for reaching that level.
// The bounds tighten as the level rises.
var promotionRules = map[models.MasteryLevel]promotionRule{
	models.MasteryIntroduced: {minAttempts: 1, maxErrRate: 1.01}, // first exposure always introduces
	models.MasteryPracticing: {minAttempts: 3, maxErrRate: 0.50},
	models.MasteryFamiliar:   {minAttempts: 10, maxErrRate: 0.40},
	models.MasteryProficient: {minAttempts: 20, maxErrRate: 0.15},
	models.MasteryMastered:   {minAttempts: 30, maxErrRate: 0.10},
}

// maintenanceThresholds: error rates at or above these regress a level
// after extended inactivity.
var maintenanceThresholds = map[models.MasteryLevel]float64{
	models.MasteryFamiliar:   0.40,
	models.MasteryProficient: 0.15,
	models.MasteryMastered:   0.15,
}

// RecordPractice applies one practice outcome and returns the updated copy.
// The error rate is a decaying average; level transitions are evaluated
// after every event. Promotion moves at most one step per event (capped at
// mastered); demotion fires when the recent error rate crosses
// HighErrorBound with sufficient practice behind it (floored at unknown).
func RecordPractice(p models.GrammarProgress, correct bool, now time.Time) models.GrammarProgress {
	p.TimesPracticed++
	practiced := now
	p.LastPracticedAt = &practiced

	errValue := 1.0
	if correct {
		errValue = 0.0
	}
	p.RecentErrorRate = (1-ErrorRateAlpha)*p.RecentErrorRate + ErrorRateAlpha*errValue

	if next, ok := promotionRules[p.MasteryLevel+1]; ok {
		if p.TimesPracticed >= next.minAttempts && p.RecentErrorRate < next.maxErrRate {
			p.MasteryLevel++
			return p
		}
	}

	if p.MasteryLevel > models.MasteryUnknown &&
		p.TimesPracticed >= DemotionMinAttempts &&
		p.RecentErrorRate > HighErrorBound {
		p.MasteryLevel--
	}
	return p
}

// CheckRegression drops one mastery level when a concept has sat
// unpracticed past InactivityDays with an error rate at or above its
// maintenance threshold. Levels at practicing or below never regress.
func CheckRegression(p models.GrammarProgress, now time.Time) models.GrammarProgress {
	if p.MasteryLevel <= models.MasteryPracticing || p.LastPracticedAt == nil {
		return p
	}
	inactive := now.Sub(*p.LastPracticedAt)
	if inactive <= time.Duration(InactivityDays)*24*time.Hour {
		return p
	}
	threshold, ok := maintenanceThresholds[p.MasteryLevel]
	if !ok {
		return p
	}
	if p.RecentErrorRate >= threshold {
		p.MasteryLevel--
	}
	return p
}
