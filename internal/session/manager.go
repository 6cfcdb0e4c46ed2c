package session

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marcusv/linguaflash/internal/capacity"
	"github.com/marcusv/linguaflash/internal/curriculum"
	"github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/evaluator"
	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/mastery"
	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/practice"
	"github.com/marcusv/linguaflash/internal/repository"
	"github.com/marcusv/linguaflash/internal/srs"
)

// Params wires a Manager to its collaborators. Zero-value tuning fields
// fall back to sensible defaults.
type Params struct {
	Learners   repository.LearnerRepository
	States     repository.LearnerStateRepository
	Vocabulary repository.VocabularyRepository
	Grammar    repository.GrammarRepository
	Sessions   repository.SessionRepository
	Curriculum curriculum.Provider
	Evaluator  evaluator.Evaluator

	ActivityLimit int
	IdleTimeout   time.Duration
	Now           func() time.Time
	RNG           *rand.Rand
}

type learnerKey struct {
	learnerID string
	language  models.Language
}

// liveSession is the in-memory state of one session. Activities are
// transient: they exist only here, never in the database.
type liveSession struct {
	mu               sync.Mutex
	session          models.Session
	state            *models.LearnerLanguageState
	selector         *practice.Selector
	vocab            map[string]models.VocabularyProgress
	grammar          map[string]models.GrammarProgress
	pending          *models.Activity
	results          []models.ActivityResult
	served           int
	timeSpentMs      int
	studyMinutesBase int
	lastTouch        time.Time
	summary          *models.SessionSummary
}

// Manager runs the practice session lifecycle: start, serve activities,
// grade submissions, apply progress, end with a summary. A learner has at
// most one active session per language; starting a new one implicitly
// ends the previous.
type Manager struct {
	p   Params
	log *logger.Logger

	mu        sync.Mutex
	live      map[string]*liveSession
	byLearner map[learnerKey]string
}

// NewManager creates a session Manager.
func NewManager(p Params) *Manager {
	if p.ActivityLimit <= 0 {
		p.ActivityLimit = 15
	}
	if p.IdleTimeout <= 0 {
		p.IdleTimeout = 30 * time.Minute
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.RNG == nil {
		p.RNG = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		p:         p,
		log:       logger.Default().WithPrefix("session"),
		live:      make(map[string]*liveSession),
		byLearner: make(map[learnerKey]string),
	}
}

// Start opens a new session. Session types other than placement require an
// existing learner-language state.
func (m *Manager) Start(ctx context.Context, learnerID string, language models.Language, sessionType models.SessionType) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session")
	now := m.p.Now().UTC()

	learner, err := m.p.Learners.Get(ctx, learnerID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if learner == nil {
		return nil, errors.NewNotFoundError("learner", learnerID)
	}

	state, err := m.p.States.Get(ctx, learnerID, language)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if state == nil && sessionType.RequiresState() {
		return nil, errors.NewStatePrerequisiteMissingError(learnerID, string(language))
	}

	key := learnerKey{learnerID, language}
	m.mu.Lock()
	prevID, hasPrev := m.byLearner[key]
	m.mu.Unlock()
	if hasPrev {
		log.Info("implicitly ending previous session %s for learner %s", prevID, learnerID)
		if _, err := m.End(ctx, prevID); err != nil {
			log.Warn("failed to end previous session %s: %v", prevID, err)
		}
	}

	sess := models.Session{
		ID:          uuid.NewString(),
		LearnerID:   learnerID,
		Language:    language,
		SessionType: sessionType,
		StartedAt:   now,
	}
	if err := m.p.Sessions.Insert(ctx, sess); err != nil {
		return nil, errors.NewInternalError(err)
	}

	ls, err := m.buildLive(ctx, sess, state, now)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	m.mu.Lock()
	m.live[sess.ID] = ls
	m.byLearner[key] = sess.ID
	m.mu.Unlock()

	log.Info("session started: id=%s, learner=%s, language=%s, type=%s", sess.ID, learnerID, language, sessionType)
	return &sess, nil
}

// buildLive snapshots the learner's study material for the session.
// Curriculum lemmas from units the learner has reached that have no
// progress row yet enter the queue as unseen, so first exposure always
// counts as due.
func (m *Manager) buildLive(ctx context.Context, sess models.Session, state *models.LearnerLanguageState, now time.Time) (*liveSession, error) {
	vocab := make(map[string]models.VocabularyProgress)
	grammar := make(map[string]models.GrammarProgress)

	// Placement sessions carry no study queue: probes flow through the
	// placement assessor instead, so the selector sees an empty
	// curriculum and the first Next closes the session.
	if !sess.SessionType.RequiresState() {
		return &liveSession{
			session:   sess,
			state:     state,
			selector:  practice.NewSelector(nil, nil, m.p.RNG),
			vocab:     vocab,
			grammar:   grammar,
			lastTouch: now,
		}, nil
	}

	sets := m.p.Curriculum.VocabularySets(sess.Language)
	concepts := m.p.Curriculum.GrammarConcepts(sess.Language)

	rows, err := m.p.Vocabulary.List(ctx, models.VocabularyFilter{
		LearnerID: sess.LearnerID,
		Language:  sess.Language,
	})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		vocab[r.Lemma] = r
	}

	unit := 1
	if state != nil {
		unit = state.CurrentUnit
	}
	if unit > len(sets) {
		unit = len(sets)
	}
	for _, set := range sets[:unit] {
		for _, item := range set.Items {
			if _, seen := vocab[item.Lemma]; !seen {
				vocab[item.Lemma] = models.VocabularyProgress{
					LearnerID: sess.LearnerID,
					Language:  sess.Language,
					Lemma:     item.Lemma,
					CreatedAt: now,
				}
			}
		}
	}

	grammarRows, err := m.p.Grammar.ListByLearner(ctx, sess.LearnerID, sess.Language)
	if err != nil {
		return nil, err
	}
	for _, g := range grammarRows {
		grammar[g.ConceptName] = g
	}

	base := 0
	if state != nil {
		base = state.TotalStudyTimeMinutes
	}

	return &liveSession{
		session:          sess,
		state:            state,
		selector:         practice.NewSelector(sets, concepts, m.p.RNG),
		vocab:            vocab,
		grammar:          grammar,
		studyMinutesBase: base,
		lastTouch:        now,
	}, nil
}

// Next serves the next activity. If an activity is already pending it is
// served again unchanged. When the activity limit is reached or nothing
// remains to practice, the session ends and the summary is returned with
// a nil activity.
func (m *Manager) Next(ctx context.Context, sessionID string) (*models.Activity, *models.SessionSummary, error) {
	ls, err := m.get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	now := m.p.Now().UTC()

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !ls.session.Active() {
		return nil, nil, errors.NewSessionClosedError(sessionID)
	}
	ls.lastTouch = now

	if ls.pending != nil {
		pending := *ls.pending
		return &pending, nil, nil
	}

	if ls.served >= m.p.ActivityLimit {
		return nil, m.endLocked(ctx, ls, now), nil
	}

	due := srs.DueItems(sortedVocab(ls.vocab), now)
	activity := ls.selector.Select(now, due, grammarSlice(ls.grammar))
	if activity == nil {
		return nil, m.endLocked(ctx, ls, now), nil
	}

	activity.Index = ls.served
	ls.served++
	ls.pending = activity

	served := *activity
	return &served, nil, nil
}

// Submit grades the pending activity and applies the outcome to the
// learner's progress. An evaluator failure leaves the activity pending so
// the submission can be retried.
func (m *Manager) Submit(ctx context.Context, sessionID, response string, timeTakenMs int) (*models.ActivityResult, error) {
	ls, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).WithPrefix("session")
	now := m.p.Now().UTC()

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !ls.session.Active() {
		return nil, errors.NewSessionClosedError(sessionID)
	}
	if ls.pending == nil {
		return nil, errors.NewNoPendingActivityError(sessionID)
	}
	ls.lastTouch = now

	a := ls.pending
	verdict, err := m.p.Evaluator.Evaluate(ctx, evaluator.Request{
		ExerciseType: a.ExerciseType,
		Language:     ls.session.Language,
		Prompt:       a.Prompt,
		Expected:     a.Expected,
		Synonyms:     a.Synonyms,
		Options:      a.Options,
		Response:     response,
	})
	if err != nil {
		log.Error("evaluator failed for session %s: %v", sessionID, err)
		return nil, errors.NewEvaluatorFailureError(err)
	}

	if err := m.applyProgress(ctx, ls, a, verdict, now, timeTakenMs); err != nil {
		return nil, errors.NewInternalError(err)
	}

	result := models.ActivityResult{
		Index:        a.Index,
		ExerciseType: a.ExerciseType,
		Response:     response,
		Score:        verdict.Score,
		Correct:      verdict.Correct,
		Feedback:     verdict.Feedback,
		TimeTakenMs:  timeTakenMs,
	}
	ls.pending = nil
	ls.results = append(ls.results, result)

	log.Debug("activity %d submitted: correct=%v, score=%.2f", a.Index, verdict.Correct, verdict.Score)
	return &result, nil
}

// applyProgress updates vocabulary strength, grammar mastery, capacity
// levels and the aggregate state counters for one graded activity. Every
// row is staged from the unchanged in-memory snapshot and written before
// anything local is touched: a failed write leaves the session exactly as
// it was, so the retried submission recomputes identical rows and the
// idempotent upserts converge instead of double-applying the review.
func (m *Manager) applyProgress(ctx context.Context, ls *liveSession, a *models.Activity, v *evaluator.Verdict, now time.Time, timeTakenMs int) error {
	var (
		newVocab   *models.VocabularyProgress
		newGrammar *models.GrammarProgress
		newState   *models.LearnerLanguageState
	)

	if a.Lemma != "" {
		p := srs.Review(ls.vocab[a.Lemma], v.Correct, now)
		if err := m.p.Vocabulary.Upsert(ctx, p); err != nil {
			return err
		}
		newVocab = &p
	}

	if a.ConceptName != "" {
		g, ok := ls.grammar[a.ConceptName]
		if !ok {
			g = models.GrammarProgress{
				LearnerID:   ls.session.LearnerID,
				Language:    ls.session.Language,
				ConceptName: a.ConceptName,
				CreatedAt:   now,
			}
		}
		g = mastery.RecordPractice(g, v.Correct, now)
		if err := m.p.Grammar.Upsert(ctx, g); err != nil {
			return err
		}
		newGrammar = &g
	}

	totalMs := ls.timeSpentMs + timeTakenMs
	if ls.state != nil {
		st := capacity.Apply(*ls.state, capacity.ForExercise(a.ExerciseType), a.Difficulty, v.Score)

		learned, err := m.p.Vocabulary.CountStrongerThan(ctx, st.LearnerID, st.Language, srs.LearnedFloor)
		if err != nil {
			return err
		}
		st.ActiveVocabularySize = learned

		mastered, err := m.p.Grammar.CountAtLevel(ctx, st.LearnerID, st.Language, models.MasteryMastered)
		if err != nil {
			return err
		}
		st.GrammarConceptsMastered = mastered
		st.LastSessionAt = &now
		// Study time accrues from graded activity time, not wall clock,
		// so abandoned-then-reaped sessions don't inflate it.
		st.TotalStudyTimeMinutes = ls.studyMinutesBase + int(math.Round(float64(totalMs)/60000.0))

		if err := m.p.States.Upsert(ctx, st); err != nil {
			return err
		}
		newState = &st
	}

	if newVocab != nil {
		ls.vocab[a.Lemma] = *newVocab
	}
	if newGrammar != nil {
		ls.grammar[a.ConceptName] = *newGrammar
	}
	if newState != nil {
		*ls.state = *newState
	}
	ls.timeSpentMs = totalMs
	return nil
}

// End closes a session and returns its summary. Ending an already ended
// session returns the same summary.
func (m *Manager) End(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	ls, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return m.endLocked(ctx, ls, m.p.Now().UTC()), nil
}

// endLocked finishes the session. Caller holds ls.mu.
func (m *Manager) endLocked(ctx context.Context, ls *liveSession, now time.Time) *models.SessionSummary {
	if ls.summary != nil {
		return ls.summary
	}

	ended := now
	ls.session.EndedAt = &ended
	ls.pending = nil
	if err := m.p.Sessions.Update(ctx, ls.session); err != nil {
		m.log.Error("failed to persist session end %s: %v", ls.session.ID, err)
	}

	if ls.state != nil {
		st := *ls.state
		st.LastSessionAt = &ended
		if err := m.p.States.Upsert(ctx, st); err != nil {
			m.log.Error("failed to persist state for session %s: %v", ls.session.ID, err)
		}
		*ls.state = st
	}

	ls.summary = summarize(ls.session, ls.results)

	key := learnerKey{ls.session.LearnerID, ls.session.Language}
	m.mu.Lock()
	if m.byLearner[key] == ls.session.ID {
		delete(m.byLearner, key)
	}
	m.mu.Unlock()

	m.log.Info("session ended: id=%s, activities=%d, accuracy=%.2f", ls.session.ID, ls.summary.TotalActivities, ls.summary.Accuracy)
	return ls.summary
}

// Recommend suggests a session type for the learner: placement before any
// state exists, practice while reviews are due, lesson otherwise. For
// learners with a state it also names the weakest capacity so the client
// can steer the session toward it.
func (m *Manager) Recommend(ctx context.Context, learnerID string, language models.Language) (models.SessionType, models.Capacity, error) {
	state, err := m.p.States.Get(ctx, learnerID, language)
	if err != nil {
		return "", "", errors.NewInternalError(err)
	}
	if state == nil {
		return models.SessionPlacement, "", nil
	}
	focus := state.WeakestCapacity()

	now := m.p.Now().UTC()
	due, err := m.p.Vocabulary.List(ctx, models.VocabularyFilter{
		LearnerID: learnerID,
		Language:  language,
		DueBefore: &now,
		Limit:     1,
	})
	if err != nil {
		return "", "", errors.NewInternalError(err)
	}
	if len(due) > 0 {
		return models.SessionPractice, focus, nil
	}
	return models.SessionLesson, focus, nil
}

// ReapIdle ends active sessions idle past the timeout and evicts ended
// sessions that have gone stale. Returns the number of sessions ended.
func (m *Manager) ReapIdle(ctx context.Context) int {
	now := m.p.Now().UTC()

	m.mu.Lock()
	ids := make([]string, 0, len(m.live))
	for id := range m.live {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	reaped := 0
	for _, id := range ids {
		m.mu.Lock()
		ls, ok := m.live[id]
		m.mu.Unlock()
		if !ok {
			continue
		}

		ls.mu.Lock()
		idle := now.Sub(ls.lastTouch) > m.p.IdleTimeout
		switch {
		case ls.session.Active() && idle:
			m.log.Info("reaping idle session: id=%s", id)
			m.endLocked(ctx, ls, now)
			reaped++
		case !ls.session.Active() && idle:
			m.mu.Lock()
			delete(m.live, id)
			m.mu.Unlock()
		}
		ls.mu.Unlock()
	}
	return reaped
}

func (m *Manager) get(sessionID string) (*liveSession, error) {
	m.mu.Lock()
	ls, ok := m.live[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	return ls, nil
}

// sortedVocab returns the vocabulary rows ordered by lemma so selection
// among equally due items is stable.
func sortedVocab(vocab map[string]models.VocabularyProgress) []models.VocabularyProgress {
	out := make([]models.VocabularyProgress, 0, len(vocab))
	for _, p := range vocab {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lemma < out[j].Lemma })
	return out
}

func grammarSlice(grammar map[string]models.GrammarProgress) []models.GrammarProgress {
	out := make([]models.GrammarProgress, 0, len(grammar))
	for _, g := range grammar {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConceptName < out[j].ConceptName })
	return out
}

func summarize(s models.Session, results []models.ActivityResult) *models.SessionSummary {
	total := len(results)
	correct := 0
	var timeSum float64
	for _, r := range results {
		if r.Correct {
			correct++
		}
		timeSum += float64(r.TimeTakenMs)
	}

	summary := &models.SessionSummary{
		SessionID:       s.ID,
		SessionType:     s.SessionType,
		TotalActivities: total,
		CorrectCount:    correct,
		IncorrectCount:  total - correct,
		StartedAt:       s.StartedAt,
		EndedAt:         *s.EndedAt,
	}
	if total > 0 {
		summary.Accuracy = float64(correct) / float64(total)
		summary.AverageTimeMs = timeSum / float64(total)
	}
	return summary
}
