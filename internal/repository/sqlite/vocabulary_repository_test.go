package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/testutil"
)

func seedLearner(t *testing.T, db *sql.DB, learnerID string, language models.Language) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO learners (id, name) VALUES (?, ?)`, learnerID, "Test Learner")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO learner_language_states (learner_id, language) VALUES (?, ?)`, learnerID, language)
	require.NoError(t, err)
}

func TestVocabularyRepository_UpsertAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedLearner(t, db, "l1", models.LanguageLatin)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()

	next := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	p := models.VocabularyProgress{
		LearnerID:    "l1",
		Language:     models.LanguageLatin,
		Lemma:        "aqua",
		Strength:     2.5,
		NextReview:   &next,
		TimesCorrect: 3,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.Get(ctx, "l1", models.LanguageLatin, "aqua")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2.5, got.Strength)
	assert.Equal(t, 3, got.TimesCorrect)
	require.NotNil(t, got.NextReview)
	assert.True(t, got.NextReview.Equal(next))
	assert.Nil(t, got.LastReviewedAt)
}

func TestVocabularyRepository_UpsertOverwrites(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedLearner(t, db, "l1", models.LanguageLatin)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()

	p := models.VocabularyProgress{
		LearnerID: "l1", Language: models.LanguageLatin, Lemma: "aqua",
		Strength: 1.0, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, p))

	p.Strength = 2.0
	p.TimesIncorrect = 1
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.Get(ctx, "l1", models.LanguageLatin, "aqua")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2.0, got.Strength)
	assert.Equal(t, 1, got.TimesIncorrect)
}

func TestVocabularyRepository_GetMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedLearner(t, db, "l1", models.LanguageLatin)
	repo := NewVocabularyRepository(db)

	got, err := repo.Get(context.Background(), "l1", models.LanguageLatin, "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestVocabularyRepository_ListDueOrdering(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedLearner(t, db, "l1", models.LanguageLatin)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-48 * time.Hour)
	later := now.Add(-1 * time.Hour)
	future := now.Add(24 * time.Hour)

	for _, p := range []models.VocabularyProgress{
		{LearnerID: "l1", Language: models.LanguageLatin, Lemma: "recent", NextReview: &later, Strength: 1, CreatedAt: now},
		{LearnerID: "l1", Language: models.LanguageLatin, Lemma: "overdue", NextReview: &earlier, Strength: 1, CreatedAt: now},
		{LearnerID: "l1", Language: models.LanguageLatin, Lemma: "unseen", CreatedAt: now},
		{LearnerID: "l1", Language: models.LanguageLatin, Lemma: "future", NextReview: &future, Strength: 1, CreatedAt: now},
	} {
		require.NoError(t, repo.Upsert(ctx, p))
	}

	got, err := repo.List(ctx, models.VocabularyFilter{
		LearnerID: "l1",
		Language:  models.LanguageLatin,
		DueBefore: &now,
	})
	require.NoError(t, err)
	require.Len(t, got, 3, "future item is not due")

	lemmas := []string{got[0].Lemma, got[1].Lemma, got[2].Lemma}
	assert.Equal(t, []string{"unseen", "overdue", "recent"}, lemmas,
		"never-reviewed first, then oldest next_review")
}

func TestVocabularyRepository_ListRespectsLimit(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedLearner(t, db, "l1", models.LanguageLatin)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()

	for _, lemma := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Upsert(ctx, models.VocabularyProgress{
			LearnerID: "l1", Language: models.LanguageLatin, Lemma: lemma, CreatedAt: time.Now().UTC(),
		}))
	}

	got, err := repo.List(ctx, models.VocabularyFilter{
		LearnerID: "l1", Language: models.LanguageLatin, Limit: 2,
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestVocabularyRepository_CountStrongerThan(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedLearner(t, db, "l1", models.LanguageLatin)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()

	for lemma, strength := range map[string]float64{"weak": 0.5, "ok": 1.0, "strong": 4.0} {
		require.NoError(t, repo.Upsert(ctx, models.VocabularyProgress{
			LearnerID: "l1", Language: models.LanguageLatin, Lemma: lemma,
			Strength: strength, CreatedAt: time.Now().UTC(),
		}))
	}

	count, err := repo.CountStrongerThan(ctx, "l1", models.LanguageLatin, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVocabularyRepository_LanguagesIsolated(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedLearner(t, db, "l1", models.LanguageLatin)
	_, err := db.Exec(`INSERT INTO learner_language_states (learner_id, language) VALUES (?, ?)`, "l1", models.LanguageGreek)
	require.NoError(t, err)

	repo := NewVocabularyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.VocabularyProgress{
		LearnerID: "l1", Language: models.LanguageLatin, Lemma: "aqua", CreatedAt: time.Now().UTC(),
	}))

	got, err := repo.List(ctx, models.VocabularyFilter{LearnerID: "l1", Language: models.LanguageGreek})
	require.NoError(t, err)
	assert.Empty(t, got)
}
