package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/repository"
)

type vocabularyRepository struct {
	db *sql.DB
}

// NewVocabularyRepository creates a new VocabularyRepository implementation
func NewVocabularyRepository(db *sql.DB) repository.VocabularyRepository {
	return &vocabularyRepository{db: db}
}

func (r *vocabularyRepository) Get(ctx context.Context, learnerID string, language models.Language, lemma string) (*models.VocabularyProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("vocab_repo")
	log.Debug("getting vocabulary progress: learner_id=%s, lemma=%s", learnerID, lemma)

	var p models.VocabularyProgress
	var nextReview, lastReviewed sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT learner_id, language, lemma, strength, next_review, last_reviewed_at,
       times_correct, times_incorrect, created_at
FROM vocabulary_progress
WHERE learner_id = ? AND language = ? AND lemma = ?
`, learnerID, language, lemma).Scan(&p.LearnerID, &p.Language, &p.Lemma, &p.Strength,
		&nextReview, &lastReviewed, &p.TimesCorrect, &p.TimesIncorrect, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get vocabulary progress: %v", err)
		return nil, err
	}
	p.NextReview = timePtr(nextReview)
	p.LastReviewedAt = timePtr(lastReviewed)
	return &p, nil
}

func (r *vocabularyRepository) List(ctx context.Context, filter models.VocabularyFilter) ([]models.VocabularyProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("vocab_repo")
	log.Debug("listing vocabulary progress: learner_id=%s, language=%s", filter.LearnerID, filter.Language)

	query := sqlBuilder.Select(
		"learner_id", "language", "lemma", "strength", "next_review", "last_reviewed_at",
		"times_correct", "times_incorrect", "created_at",
	).From("vocabulary_progress").
		Where(squirrel.Eq{"learner_id": filter.LearnerID, "language": filter.Language})

	if filter.DueBefore != nil {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"next_review": nil},
			squirrel.LtOrEq{"next_review": *filter.DueBefore},
		})
	}
	query = query.OrderBy("next_review IS NOT NULL", "next_review ASC", "strength ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build vocabulary query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query vocabulary progress: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.VocabularyProgress
	for rows.Next() {
		var p models.VocabularyProgress
		var nextReview, lastReviewed sql.NullTime
		if err := rows.Scan(&p.LearnerID, &p.Language, &p.Lemma, &p.Strength,
			&nextReview, &lastReviewed, &p.TimesCorrect, &p.TimesIncorrect, &p.CreatedAt); err != nil {
			log.Error("failed to scan vocabulary row: %v", err)
			return nil, err
		}
		p.NextReview = timePtr(nextReview)
		p.LastReviewedAt = timePtr(lastReviewed)
		items = append(items, p)
	}
	log.Debug("found %d vocabulary rows", len(items))
	return items, rows.Err()
}

func (r *vocabularyRepository) Upsert(ctx context.Context, p models.VocabularyProgress) error {
	log := logger.FromContext(ctx).WithPrefix("vocab_repo")
	log.Debug("upserting vocabulary progress: learner_id=%s, lemma=%s, strength=%.2f", p.LearnerID, p.Lemma, p.Strength)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO vocabulary_progress (
    learner_id, language, lemma, strength, next_review, last_reviewed_at,
    times_correct, times_incorrect, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (learner_id, language, lemma) DO UPDATE SET
    strength = excluded.strength,
    next_review = excluded.next_review,
    last_reviewed_at = excluded.last_reviewed_at,
    times_correct = excluded.times_correct,
    times_incorrect = excluded.times_incorrect
`, p.LearnerID, p.Language, p.Lemma, p.Strength, nullTime(p.NextReview), nullTime(p.LastReviewedAt),
		p.TimesCorrect, p.TimesIncorrect, p.CreatedAt)
	if err != nil {
		log.Error("failed to upsert vocabulary progress: %v", err)
	}
	return err
}

func (r *vocabularyRepository) CountStrongerThan(ctx context.Context, learnerID string, language models.Language, strength float64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("vocab_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM vocabulary_progress
WHERE learner_id = ? AND language = ? AND strength >= ?
`, learnerID, language, strength).Scan(&count)
	if err != nil {
		log.Error("failed to count vocabulary progress: %v", err)
		return 0, err
	}
	return count, nil
}
