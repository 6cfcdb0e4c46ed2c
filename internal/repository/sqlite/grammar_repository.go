package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/repository"
)

type grammarRepository struct {
	db *sql.DB
}

// NewGrammarRepository creates a new GrammarRepository implementation
func NewGrammarRepository(db *sql.DB) repository.GrammarRepository {
	return &grammarRepository{db: db}
}

func (r *grammarRepository) Get(ctx context.Context, learnerID string, language models.Language, concept string) (*models.GrammarProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("grammar_repo")
	log.Debug("getting grammar progress: learner_id=%s, concept=%s", learnerID, concept)

	var p models.GrammarProgress
	var lastPracticed sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT learner_id, language, concept_name, mastery_level, times_practiced,
       recent_error_rate, last_practiced_at, created_at
FROM grammar_progress
WHERE learner_id = ? AND language = ? AND concept_name = ?
`, learnerID, language, concept).Scan(&p.LearnerID, &p.Language, &p.ConceptName, &p.MasteryLevel,
		&p.TimesPracticed, &p.RecentErrorRate, &lastPracticed, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get grammar progress: %v", err)
		return nil, err
	}
	p.LastPracticedAt = timePtr(lastPracticed)
	return &p, nil
}

func (r *grammarRepository) ListByLearner(ctx context.Context, learnerID string, language models.Language) ([]models.GrammarProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("grammar_repo")
	log.Debug("listing grammar progress: learner_id=%s, language=%s", learnerID, language)

	rows, err := r.db.QueryContext(ctx, `
SELECT learner_id, language, concept_name, mastery_level, times_practiced,
       recent_error_rate, last_practiced_at, created_at
FROM grammar_progress
WHERE learner_id = ? AND language = ?
ORDER BY concept_name
`, learnerID, language)
	if err != nil {
		log.Error("failed to query grammar progress: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.GrammarProgress
	for rows.Next() {
		var p models.GrammarProgress
		var lastPracticed sql.NullTime
		if err := rows.Scan(&p.LearnerID, &p.Language, &p.ConceptName, &p.MasteryLevel,
			&p.TimesPracticed, &p.RecentErrorRate, &lastPracticed, &p.CreatedAt); err != nil {
			log.Error("failed to scan grammar row: %v", err)
			return nil, err
		}
		p.LastPracticedAt = timePtr(lastPracticed)
		items = append(items, p)
	}
	log.Debug("found %d grammar rows", len(items))
	return items, rows.Err()
}

func (r *grammarRepository) Upsert(ctx context.Context, p models.GrammarProgress) error {
	log := logger.FromContext(ctx).WithPrefix("grammar_repo")
	log.Debug("upserting grammar progress: learner_id=%s, concept=%s, level=%d", p.LearnerID, p.ConceptName, p.MasteryLevel)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO grammar_progress (
    learner_id, language, concept_name, mastery_level, times_practiced,
    recent_error_rate, last_practiced_at, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (learner_id, language, concept_name) DO UPDATE SET
    mastery_level = excluded.mastery_level,
    times_practiced = excluded.times_practiced,
    recent_error_rate = excluded.recent_error_rate,
    last_practiced_at = excluded.last_practiced_at
`, p.LearnerID, p.Language, p.ConceptName, p.MasteryLevel, p.TimesPracticed,
		p.RecentErrorRate, nullTime(p.LastPracticedAt), p.CreatedAt)
	if err != nil {
		log.Error("failed to upsert grammar progress: %v", err)
	}
	return err
}

func (r *grammarRepository) CountAtLevel(ctx context.Context, learnerID string, language models.Language, level models.MasteryLevel) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("grammar_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM grammar_progress
WHERE learner_id = ? AND language = ? AND mastery_level >= ?
`, learnerID, language, level).Scan(&count)
	if err != nil {
		log.Error("failed to count grammar progress: %v", err)
		return 0, err
	}
	return count, nil
}
