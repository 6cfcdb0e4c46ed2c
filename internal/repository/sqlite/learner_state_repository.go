package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/repository"
)

type learnerStateRepository struct {
	db *sql.DB
}

// NewLearnerStateRepository creates a new LearnerStateRepository implementation
func NewLearnerStateRepository(db *sql.DB) repository.LearnerStateRepository {
	return &learnerStateRepository{db: db}
}

func (r *learnerStateRepository) Get(ctx context.Context, learnerID string, language models.Language) (*models.LearnerLanguageState, error) {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("getting learner state: learner_id=%s, language=%s", learnerID, language)

	var s models.LearnerLanguageState
	var lastSession sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT learner_id, language, reading_level, writing_level, listening_level, speaking_level,
       active_vocabulary_size, grammar_concepts_mastered, current_unit,
       last_session_at, total_study_time_minutes, created_at
FROM learner_language_states
WHERE learner_id = ? AND language = ?
`, learnerID, language).Scan(&s.LearnerID, &s.Language, &s.ReadingLevel, &s.WritingLevel, &s.ListeningLevel, &s.SpeakingLevel,
		&s.ActiveVocabularySize, &s.GrammarConceptsMastered, &s.CurrentUnit,
		&lastSession, &s.TotalStudyTimeMinutes, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("learner state not found: learner_id=%s, language=%s", learnerID, language)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get learner state: %v", err)
		return nil, err
	}
	s.LastSessionAt = timePtr(lastSession)
	return &s, nil
}

func (r *learnerStateRepository) Upsert(ctx context.Context, s models.LearnerLanguageState) error {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("upserting learner state: learner_id=%s, language=%s, unit=%d", s.LearnerID, s.Language, s.CurrentUnit)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO learner_language_states (
    learner_id, language, reading_level, writing_level, listening_level, speaking_level,
    active_vocabulary_size, grammar_concepts_mastered, current_unit,
    last_session_at, total_study_time_minutes, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (learner_id, language) DO UPDATE SET
    reading_level = excluded.reading_level,
    writing_level = excluded.writing_level,
    listening_level = excluded.listening_level,
    speaking_level = excluded.speaking_level,
    active_vocabulary_size = excluded.active_vocabulary_size,
    grammar_concepts_mastered = excluded.grammar_concepts_mastered,
    current_unit = excluded.current_unit,
    last_session_at = excluded.last_session_at,
    total_study_time_minutes = excluded.total_study_time_minutes
`, s.LearnerID, s.Language, s.ReadingLevel, s.WritingLevel, s.ListeningLevel, s.SpeakingLevel,
		s.ActiveVocabularySize, s.GrammarConceptsMastered, s.CurrentUnit,
		nullTime(s.LastSessionAt), s.TotalStudyTimeMinutes, s.CreatedAt)
	if err != nil {
		log.Error("failed to upsert learner state: %v", err)
	}
	return err
}
