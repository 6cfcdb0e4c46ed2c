package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/marcusv/linguaflash/internal/evaluator"
	"github.com/marcusv/linguaflash/internal/models"
)

// In-memory repository fakes backed by one shared store.

type store struct {
	mu       sync.Mutex
	learners map[string]models.Learner
	states   map[string]models.LearnerLanguageState
	vocab    map[string]models.VocabularyProgress
	grammar  map[string]models.GrammarProgress
	sessions map[string]models.Session
}

func newStore() *store {
	return &store{
		learners: make(map[string]models.Learner),
		states:   make(map[string]models.LearnerLanguageState),
		vocab:    make(map[string]models.VocabularyProgress),
		grammar:  make(map[string]models.GrammarProgress),
		sessions: make(map[string]models.Session),
	}
}

func stateKey(learnerID string, language models.Language) string {
	return learnerID + "/" + string(language)
}

type fakeLearners struct{ s *store }

func (f *fakeLearners) Insert(_ context.Context, l models.Learner) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.learners[l.ID] = l
	return nil
}

func (f *fakeLearners) Get(_ context.Context, id string) (*models.Learner, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if l, ok := f.s.learners[id]; ok {
		return &l, nil
	}
	return nil, nil
}

func (f *fakeLearners) List(_ context.Context) ([]models.Learner, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Learner
	for _, l := range f.s.learners {
		out = append(out, l)
	}
	return out, nil
}

// fakeStates can script write failures: each failed Upsert decrements
// failUpserts and leaves the store untouched.
type fakeStates struct {
	s           *store
	failUpserts int
}

func (f *fakeStates) Get(_ context.Context, learnerID string, language models.Language) (*models.LearnerLanguageState, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if st, ok := f.s.states[stateKey(learnerID, language)]; ok {
		return &st, nil
	}
	return nil, nil
}

func (f *fakeStates) Upsert(_ context.Context, st models.LearnerLanguageState) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.failUpserts > 0 {
		f.failUpserts--
		return errors.New("state store unavailable")
	}
	f.s.states[stateKey(st.LearnerID, st.Language)] = st
	return nil
}

type fakeVocab struct{ s *store }

func vocabKey(learnerID string, language models.Language, lemma string) string {
	return learnerID + "/" + string(language) + "/" + lemma
}

func (f *fakeVocab) Get(_ context.Context, learnerID string, language models.Language, lemma string) (*models.VocabularyProgress, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if p, ok := f.s.vocab[vocabKey(learnerID, language, lemma)]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeVocab) List(_ context.Context, filter models.VocabularyFilter) ([]models.VocabularyProgress, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.VocabularyProgress
	for _, p := range f.s.vocab {
		if p.LearnerID != filter.LearnerID || p.Language != filter.Language {
			continue
		}
		if filter.DueBefore != nil && p.NextReview != nil && p.NextReview.After(*filter.DueBefore) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lemma < out[j].Lemma })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeVocab) Upsert(_ context.Context, p models.VocabularyProgress) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.vocab[vocabKey(p.LearnerID, p.Language, p.Lemma)] = p
	return nil
}

func (f *fakeVocab) CountStrongerThan(_ context.Context, learnerID string, language models.Language, strength float64) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	count := 0
	for _, p := range f.s.vocab {
		if p.LearnerID == learnerID && p.Language == language && p.Strength >= strength {
			count++
		}
	}
	return count, nil
}

type fakeGrammar struct{ s *store }

func grammarKey(learnerID string, language models.Language, concept string) string {
	return learnerID + "/" + string(language) + "/" + concept
}

func (f *fakeGrammar) Get(_ context.Context, learnerID string, language models.Language, concept string) (*models.GrammarProgress, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if g, ok := f.s.grammar[grammarKey(learnerID, language, concept)]; ok {
		return &g, nil
	}
	return nil, nil
}

func (f *fakeGrammar) ListByLearner(_ context.Context, learnerID string, language models.Language) ([]models.GrammarProgress, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.GrammarProgress
	for _, g := range f.s.grammar {
		if g.LearnerID == learnerID && g.Language == language {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConceptName < out[j].ConceptName })
	return out, nil
}

func (f *fakeGrammar) Upsert(_ context.Context, g models.GrammarProgress) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.grammar[grammarKey(g.LearnerID, g.Language, g.ConceptName)] = g
	return nil
}

func (f *fakeGrammar) CountAtLevel(_ context.Context, learnerID string, language models.Language, level models.MasteryLevel) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	count := 0
	for _, g := range f.s.grammar {
		if g.LearnerID == learnerID && g.Language == language && g.MasteryLevel >= level {
			count++
		}
	}
	return count, nil
}

type fakeSessions struct{ s *store }

func (f *fakeSessions) Insert(_ context.Context, sess models.Session) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.sessions[sess.ID] = sess
	return nil
}

func (f *fakeSessions) Update(_ context.Context, sess models.Session) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.sessions[sess.ID] = sess
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*models.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if sess, ok := f.s.sessions[id]; ok {
		return &sess, nil
	}
	return nil, nil
}

func (f *fakeSessions) List(_ context.Context, filter models.SessionFilter) ([]models.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Session
	for _, sess := range f.s.sessions {
		if filter.LearnerID != "" && sess.LearnerID != filter.LearnerID {
			continue
		}
		if filter.Language != "" && sess.Language != filter.Language {
			continue
		}
		if filter.ActiveOnly && !sess.Active() {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

// scriptEval grades by comparing the response to the expected answer
// verbatim. Failures, when scripted, happen before any grading.
type scriptEval struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (e *scriptEval) Evaluate(_ context.Context, req evaluator.Request) (*evaluator.Verdict, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failures > 0 {
		e.failures--
		return nil, errors.New("evaluator unavailable")
	}
	if req.Response == req.Expected {
		return &evaluator.Verdict{Score: 1.0, Correct: true, Feedback: "Correct!"}, nil
	}
	return &evaluator.Verdict{Score: 0.0, Correct: false, Feedback: "Expected: " + req.Expected}, nil
}

// fakeClock is a settable clock for deterministic scheduling.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
