package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcusv/linguaflash/internal/curriculum"
	apperrors "github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/models"
)

var testStart = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	manager *Manager
	store   *store
	states  *fakeStates
	eval    *scriptEval
	clock   *fakeClock
}

func newTestEnv(t *testing.T, activityLimit int) *testEnv {
	t.Helper()

	reg := curriculum.NewRegistry()
	reg.Add(models.LanguageLatin, []curriculum.VocabularySet{
		{
			SetName:  "core-1",
			Language: "latin",
			Items: []curriculum.VocabularyItem{
				{Lemma: "aqua", Definition: "water"},
				{Lemma: "terra", Definition: "earth"},
			},
		},
	}, []curriculum.GrammarConcept{
		{Name: "first declension", Category: "morphology", DifficultyLevel: 1},
	})
	return newCustomEnv(t, reg, activityLimit)
}

func newCustomEnv(t *testing.T, reg *curriculum.Registry, activityLimit int) *testEnv {
	t.Helper()

	s := newStore()
	states := &fakeStates{s: s}
	eval := &scriptEval{}
	clock := &fakeClock{t: testStart}

	m := NewManager(Params{
		Learners:      &fakeLearners{s: s},
		States:        states,
		Vocabulary:    &fakeVocab{s: s},
		Grammar:       &fakeGrammar{s: s},
		Sessions:      &fakeSessions{s: s},
		Curriculum:    reg,
		Evaluator:     eval,
		ActivityLimit: activityLimit,
		IdleTimeout:   30 * time.Minute,
		Now:           clock.Now,
		RNG:           rand.New(rand.NewSource(7)),
	})
	return &testEnv{manager: m, store: s, states: states, eval: eval, clock: clock}
}

func (e *testEnv) seedLearner(learnerID string, withState bool) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	e.store.learners[learnerID] = models.Learner{ID: learnerID, Name: "Test", CreatedAt: testStart}
	if withState {
		e.store.states[stateKey(learnerID, models.LanguageLatin)] = models.LearnerLanguageState{
			LearnerID:   learnerID,
			Language:    models.LanguageLatin,
			CurrentUnit: 1,
			CreatedAt:   testStart,
		}
	}
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestStart_UnknownLearner(t *testing.T) {
	env := newTestEnv(t, 10)

	_, err := env.manager.Start(context.Background(), "ghost", models.LanguageLatin, models.SessionPractice)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, appCode(t, err))
}

func TestStart_RequiresPlacementFirst(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", false)

	_, err := env.manager.Start(context.Background(), "l1", models.LanguageLatin, models.SessionPractice)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeStatePrereqMissing, appCode(t, err))
}

func TestStart_PlacementNeedsNoState(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", false)

	sess, err := env.manager.Start(context.Background(), "l1", models.LanguageLatin, models.SessionPlacement)
	require.NoError(t, err)
	assert.True(t, sess.Active())
	assert.Equal(t, models.SessionPlacement, sess.SessionType)
}

func TestStart_ImplicitlyEndsPreviousSession(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	first, err := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	require.NoError(t, err)
	second, err := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, _, err = env.manager.Next(ctx, first.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionClosed, appCode(t, err))

	_, _, err = env.manager.Next(ctx, second.ID)
	assert.NoError(t, err)
}

func TestNext_ServesDueVocabularyFirst(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, err := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	require.NoError(t, err)

	a, summary, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	require.Nil(t, summary)
	require.NotNil(t, a)
	assert.Equal(t, "aqua", a.Lemma, "unseen lemmas are due, lexicographic tie-break")
	assert.Equal(t, 0, a.Index)
}

func TestNext_ReservesPendingActivity(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	first, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	again, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, first, again, "pending activity is re-served unchanged")
}

func TestNext_UnknownSession(t *testing.T) {
	env := newTestEnv(t, 10)

	_, _, err := env.manager.Next(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, appCode(t, err))
}

func TestSubmit_CorrectAnswerAdvancesProgress(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	a, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, "aqua", a.Lemma)

	result, err := env.manager.Submit(ctx, sess.ID, "water", 1500)
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, 1500, result.TimeTakenMs)

	env.store.mu.Lock()
	p := env.store.vocab[vocabKey("l1", models.LanguageLatin, "aqua")]
	st := env.store.states[stateKey("l1", models.LanguageLatin)]
	env.store.mu.Unlock()

	assert.Equal(t, 1.0, p.Strength)
	require.NotNil(t, p.NextReview)
	assert.True(t, p.NextReview.After(testStart))
	assert.Equal(t, 1, p.TimesCorrect)
	assert.Equal(t, 1, st.ActiveVocabularySize, "strength reached the learned floor")
	assert.Greater(t, st.ReadingLevel, 0.0)
}

func TestSubmit_IncorrectAnswerReschedulesSoon(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	_, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)

	result, err := env.manager.Submit(ctx, sess.ID, "wrong answer", 900)
	require.NoError(t, err)
	assert.False(t, result.Correct)

	env.store.mu.Lock()
	p := env.store.vocab[vocabKey("l1", models.LanguageLatin, "aqua")]
	env.store.mu.Unlock()

	assert.Equal(t, 0.0, p.Strength)
	assert.Equal(t, 1, p.TimesIncorrect)
	require.NotNil(t, p.NextReview)
	assert.True(t, p.NextReview.Sub(testStart) <= 10*time.Minute)
}

func TestSubmit_WithoutPendingActivity(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	_, err := env.manager.Submit(ctx, sess.ID, "water", 100)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNoPendingActivity, appCode(t, err))
}

func TestSubmit_EvaluatorFailureKeepsActivityPending(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	a, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)

	env.eval.failures = 1
	_, err = env.manager.Submit(ctx, sess.ID, "water", 100)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeEvaluatorFailure, appCode(t, err))

	// The same activity is still pending; resubmission succeeds.
	again, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Index, again.Index)

	result, err := env.manager.Submit(ctx, sess.ID, "water", 100)
	require.NoError(t, err)
	assert.True(t, result.Correct)
}

func TestSessionEndsAtActivityLimit(t *testing.T) {
	env := newTestEnv(t, 2)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	for i := 0; i < 2; i++ {
		a, summary, err := env.manager.Next(ctx, sess.ID)
		require.NoError(t, err)
		require.Nil(t, summary)
		_, err = env.manager.Submit(ctx, sess.ID, a.Expected, 1000)
		require.NoError(t, err)
	}

	a, summary, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, a)
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.TotalActivities)
	assert.Equal(t, 2, summary.CorrectCount)
	assert.Equal(t, 1.0, summary.Accuracy)
	assert.Equal(t, float64(1000), summary.AverageTimeMs)

	// The session is now closed.
	_, _, err = env.manager.Next(ctx, sess.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionClosed, appCode(t, err))
}

func TestEnd_IdempotentAndZeroAccuracyWhenEmpty(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)

	first, err := env.manager.End(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.TotalActivities)
	assert.Equal(t, 0.0, first.Accuracy)

	second, err := env.manager.End(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEnd_UpdatesLearnerState(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)

	a, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	_, err = env.manager.Submit(ctx, sess.ID, a.Expected, 90_000)
	require.NoError(t, err)

	// Study time is already visible mid-session, right after the submit.
	env.store.mu.Lock()
	st := env.store.states[stateKey("l1", models.LanguageLatin)]
	env.store.mu.Unlock()
	assert.Equal(t, 2, st.TotalStudyTimeMinutes, "90s of activity time rounds to 2 minutes")

	_, err = env.manager.End(ctx, sess.ID)
	require.NoError(t, err)

	env.store.mu.Lock()
	st = env.store.states[stateKey("l1", models.LanguageLatin)]
	env.store.mu.Unlock()

	require.NotNil(t, st.LastSessionAt)
	assert.Equal(t, 2, st.TotalStudyTimeMinutes, "ending a session adds no extra time")
}

func TestSubmit_OnEndedSession(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	_, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	_, err = env.manager.End(ctx, sess.ID)
	require.NoError(t, err)

	_, err = env.manager.Submit(ctx, sess.ID, "water", 100)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionClosed, appCode(t, err))
}

func TestGrammarServedOnceVocabularyExhausted(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)

	// Answer both vocabulary items; their reviews move into the future.
	for i := 0; i < 2; i++ {
		a, _, err := env.manager.Next(ctx, sess.ID)
		require.NoError(t, err)
		require.NotEmpty(t, a.Lemma)
		_, err = env.manager.Submit(ctx, sess.ID, a.Expected, 500)
		require.NoError(t, err)
	}

	a, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, models.ExerciseGrammarProbe, a.ExerciseType)
	assert.Equal(t, "first declension", a.ConceptName)

	_, err = env.manager.Submit(ctx, sess.ID, "morphology", 700)
	require.NoError(t, err)

	env.store.mu.Lock()
	g := env.store.grammar[grammarKey("l1", models.LanguageLatin, "first declension")]
	env.store.mu.Unlock()
	assert.Equal(t, models.MasteryIntroduced, g.MasteryLevel)
	assert.Equal(t, 1, g.TimesPracticed)
}

func TestReapIdle_EndsStaleSessions(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)

	env.clock.Advance(31 * time.Minute)
	reaped := env.manager.ReapIdle(ctx)
	assert.Equal(t, 1, reaped)

	_, _, err := env.manager.Next(ctx, sess.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionClosed, appCode(t, err))
}

func TestReapIdle_LeavesFreshSessionsAlone(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)

	env.clock.Advance(5 * time.Minute)
	assert.Equal(t, 0, env.manager.ReapIdle(ctx))

	_, _, err := env.manager.Next(ctx, sess.ID)
	assert.NoError(t, err)
}

func TestRecommend(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("fresh", false)
	env.seedLearner("placed", true)
	ctx := context.Background()

	got, focus, err := env.manager.Recommend(ctx, "fresh", models.LanguageLatin)
	require.NoError(t, err)
	assert.Equal(t, models.SessionPlacement, got, "no state means placement first")
	assert.Empty(t, focus, "no state means no capacity to focus on")

	got, focus, err = env.manager.Recommend(ctx, "placed", models.LanguageLatin)
	require.NoError(t, err)
	assert.Equal(t, models.SessionLesson, got, "nothing due yet")
	assert.Equal(t, models.CapacityReading, focus, "level tie resolves to reading")

	// A due review flips the recommendation to practice.
	due := testStart.Add(-time.Hour)
	env.store.mu.Lock()
	env.store.vocab[vocabKey("placed", models.LanguageLatin, "aqua")] = models.VocabularyProgress{
		LearnerID: "placed", Language: models.LanguageLatin, Lemma: "aqua",
		Strength: 1, NextReview: &due, CreatedAt: testStart,
	}
	env.store.mu.Unlock()

	got, focus, err = env.manager.Recommend(ctx, "placed", models.LanguageLatin)
	require.NoError(t, err)
	assert.Equal(t, models.SessionPractice, got)
	assert.Equal(t, models.CapacityReading, focus)
}

func TestRecommend_FocusIsWeakestCapacity(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	env.store.mu.Lock()
	st := env.store.states[stateKey("l1", models.LanguageLatin)]
	st.ReadingLevel = 2.0
	st.WritingLevel = 1.5
	st.ListeningLevel = 0.5
	st.SpeakingLevel = 1.0
	env.store.states[stateKey("l1", models.LanguageLatin)] = st
	env.store.mu.Unlock()

	_, focus, err := env.manager.Recommend(ctx, "l1", models.LanguageLatin)
	require.NoError(t, err)
	assert.Equal(t, models.CapacityListening, focus)
}

func TestPlacementSession_ServesNoActivities(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", false)
	ctx := context.Background()

	sess, err := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPlacement)
	require.NoError(t, err)

	// Placement carries no study queue: the first Next ends the session
	// with an empty summary instead of serving grammar drills.
	a, summary, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, a)
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.TotalActivities)

	_, err = env.manager.Submit(ctx, sess.ID, "morphology", 500)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionClosed, appCode(t, err))

	// Nothing may be written before placement creates the state.
	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	assert.Empty(t, env.store.grammar)
	assert.Empty(t, env.store.vocab)
	assert.Empty(t, env.store.states)
}

func TestSubmit_FailedWriteRetriesWithoutDoubleCounting(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	a, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, "aqua", a.Lemma)

	env.states.failUpserts = 1
	_, err = env.manager.Submit(ctx, sess.ID, "water", 1200)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInternal, appCode(t, err))

	// The activity is still pending and the retried submission works
	// from the same pre-review snapshot.
	again, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Index, again.Index)

	result, err := env.manager.Submit(ctx, sess.ID, "water", 1200)
	require.NoError(t, err)
	assert.True(t, result.Correct)

	env.store.mu.Lock()
	p := env.store.vocab[vocabKey("l1", models.LanguageLatin, "aqua")]
	st := env.store.states[stateKey("l1", models.LanguageLatin)]
	env.store.mu.Unlock()

	assert.Equal(t, 1, p.TimesCorrect, "the review applies once, not per attempt")
	assert.Equal(t, 1.0, p.Strength)
	assert.Equal(t, 1, st.ActiveVocabularySize)
	assert.Equal(t, 0, st.TotalStudyTimeMinutes, "1.2s of activity time rounds to zero")
}

func TestSummary_TenActivitiesEightCorrect(t *testing.T) {
	items := make([]curriculum.VocabularyItem, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, curriculum.VocabularyItem{
			Lemma:      fmt.Sprintf("verbum%02d", i),
			Definition: fmt.Sprintf("meaning %02d", i),
		})
	}
	reg := curriculum.NewRegistry()
	reg.Add(models.LanguageLatin, []curriculum.VocabularySet{
		{SetName: "core-1", Language: "latin", Items: items},
	}, nil)

	env := newCustomEnv(t, reg, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, err := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		a, summary, err := env.manager.Next(ctx, sess.ID)
		require.NoError(t, err)
		require.Nil(t, summary)
		require.NotNil(t, a)

		response := a.Expected
		if i < 2 {
			response = "not it"
		}
		_, err = env.manager.Submit(ctx, sess.ID, response, 1000)
		require.NoError(t, err)
	}

	a, summary, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, a)
	require.NotNil(t, summary)
	assert.Equal(t, 10, summary.TotalActivities)
	assert.Equal(t, 8, summary.CorrectCount)
	assert.Equal(t, 2, summary.IncorrectCount)
	assert.Equal(t, 0.8, summary.Accuracy)
}

func TestSubmit_SecondSubmissionForSameActivityRejected(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedLearner("l1", true)
	ctx := context.Background()

	sess, _ := env.manager.Start(ctx, "l1", models.LanguageLatin, models.SessionPractice)
	a, _, err := env.manager.Next(ctx, sess.ID)
	require.NoError(t, err)

	_, err = env.manager.Submit(ctx, sess.ID, a.Expected, 800)
	require.NoError(t, err)

	_, err = env.manager.Submit(ctx, sess.ID, a.Expected, 800)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNoPendingActivity, appCode(t, err))
}
