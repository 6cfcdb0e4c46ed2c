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

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: id=%s, learner_id=%s, type=%s", s.ID, s.LearnerID, s.SessionType)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, learner_id, language, session_type, started_at, ended_at)
VALUES (?, ?, ?, ?, ?, ?)
`, s.ID, s.LearnerID, s.Language, s.SessionType, s.StartedAt, nullTime(s.EndedAt))
	if err != nil {
		log.Error("failed to insert session: %v", err)
	}
	return err
}

func (r *sessionRepository) Update(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session: id=%s", s.ID)

	_, err := r.db.ExecContext(ctx, `
UPDATE sessions
SET ended_at = ?
WHERE id = ?
`, nullTime(s.EndedAt), s.ID)
	if err != nil {
		log.Error("failed to update session: %v", err)
	}
	return err
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%s", id)

	var s models.Session
	var endedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, learner_id, language, session_type, started_at, ended_at
FROM sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.LearnerID, &s.Language, &s.SessionType, &s.StartedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	s.EndedAt = timePtr(endedAt)
	return &s, nil
}

func (r *sessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query := sqlBuilder.Select("id", "learner_id", "language", "session_type", "started_at", "ended_at").
		From("sessions")

	if filter.LearnerID != "" {
		query = query.Where(squirrel.Eq{"learner_id": filter.LearnerID})
	}
	if filter.Language != "" {
		query = query.Where(squirrel.Eq{"language": filter.Language})
	}
	if filter.SessionType != "" {
		query = query.Where(squirrel.Eq{"session_type": filter.SessionType})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"ended_at": nil})
	}
	query = query.OrderBy("started_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build session query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var endedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.LearnerID, &s.Language, &s.SessionType, &s.StartedAt, &endedAt); err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		s.EndedAt = timePtr(endedAt)
		sessions = append(sessions, s)
	}
	log.Debug("found %d sessions", len(sessions))
	return sessions, rows.Err()
}
