package srs

import (
	"math"
	"sort"
	"time"

	"github.com/marcusv/linguaflash/internal/models"
)

// Strength-driven scheduling constants. The review interval grows
// exponentially with strength: interval = BaseInterval * IntervalGrowth^strength,
// capped at MaxInterval.
const (
	// GrowthFactor multiplies strength on a correct answer.
	GrowthFactor = 1.5
	// MinIncrement guarantees low-strength items still make progress.
	MinIncrement = 1.0
	// FailFactor scales strength down on an incorrect answer.
	FailFactor = 0.5
	// IntervalGrowth is the per-strength-point interval multiplier.
	IntervalGrowth = 1.8
	// LearnedFloor is the strength above which an item counts toward the
	// learner's active vocabulary.
	LearnedFloor = 1.0
)

var (
	// BaseInterval is the review interval at strength zero.
	BaseInterval = 24 * time.Hour
	// MaxInterval caps how far out a review can be scheduled.
	MaxInterval = 365 * 24 * time.Hour
	// RelapseInterval is the short fixed re-review window after a miss.
	RelapseInterval = 10 * time.Minute
)

// Interval returns the review interval implied by a strength value.
func Interval(strength float64) time.Duration {
	d := time.Duration(float64(BaseInterval) * math.Pow(IntervalGrowth, strength))
	if d > MaxInterval {
		return MaxInterval
	}
	return d
}

// Review applies one response to a vocabulary progress record and returns
// the updated copy. On a correct answer strength grows multiplicatively
// (never by less than MinIncrement) and the next review moves out by
// Interval(strength). On an incorrect answer strength is halved toward the
// zero floor and the item comes back after RelapseInterval.
func Review(p models.VocabularyProgress, correct bool, now time.Time) models.VocabularyProgress {
	if correct {
		grown := p.Strength * GrowthFactor
		if grown < p.Strength+MinIncrement {
			grown = p.Strength + MinIncrement
		}
		p.Strength = grown
		p.TimesCorrect++
		next := now.Add(Interval(p.Strength))
		p.NextReview = &next
	} else {
		p.Strength *= FailFactor
		if p.Strength < 0 {
			p.Strength = 0
		}
		p.TimesIncorrect++
		next := now.Add(RelapseInterval)
		p.NextReview = &next
	}
	reviewed := now
	p.LastReviewedAt = &reviewed
	return p
}

// DueItems filters items due at now and orders them most-overdue first:
// never-reviewed items lead, then ascending next_review, ties broken by
// ascending strength so weaker items surface earlier.
func DueItems(items []models.VocabularyProgress, now time.Time) []models.VocabularyProgress {
	var due []models.VocabularyProgress
	for _, it := range items {
		if it.Due(now) {
			due = append(due, it)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		switch {
		case a.NextReview == nil && b.NextReview == nil:
			return a.Strength < b.Strength
		case a.NextReview == nil:
			return true
		case b.NextReview == nil:
			return false
		case !a.NextReview.Equal(*b.NextReview):
			return a.NextReview.Before(*b.NextReview)
		default:
			return a.Strength < b.Strength
		}
	})
	return due
}

// RecallProbability estimates current recall odds for an item using a
// half-life model: probability halves once per scheduled interval elapsed
// since the last review. Never-reviewed items score zero.
func RecallProbability(p *models.VocabularyProgress, now time.Time) float64 {
	if p.LastReviewedAt == nil {
		return 0
	}
	interval := Interval(p.Strength)
	if interval <= 0 {
		return 0
	}
	elapsed := now.Sub(*p.LastReviewedAt)
	if elapsed <= 0 {
		return 1
	}
	prob := math.Exp2(-float64(elapsed) / float64(interval))
	return math.Max(0, math.Min(1, prob))
}
