package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/models"
	"github.com/marcusv/linguaflash/internal/repository"
)

type learnerRepository struct {
	db *sql.DB
}

// NewLearnerRepository creates a new LearnerRepository implementation
func NewLearnerRepository(db *sql.DB) repository.LearnerRepository {
	return &learnerRepository{db: db}
}

func (r *learnerRepository) Insert(ctx context.Context, l models.Learner) error {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("inserting learner: id=%s", l.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO learners (id, name, created_at)
VALUES (?, ?, ?)
`, l.ID, l.Name, l.CreatedAt)
	if err != nil {
		log.Error("failed to insert learner: %v", err)
	}
	return err
}

func (r *learnerRepository) Get(ctx context.Context, id string) (*models.Learner, error) {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("getting learner: id=%s", id)

	var l models.Learner
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, created_at
FROM learners
WHERE id = ?
`, id).Scan(&l.ID, &l.Name, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("learner not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get learner: %v", err)
		return nil, err
	}
	return &l, nil
}

func (r *learnerRepository) List(ctx context.Context) ([]models.Learner, error) {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, created_at
FROM learners
ORDER BY created_at
`)
	if err != nil {
		log.Error("failed to list learners: %v", err)
		return nil, err
	}
	defer rows.Close()

	var learners []models.Learner
	for rows.Next() {
		var l models.Learner
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			log.Error("failed to scan learner row: %v", err)
			return nil, err
		}
		learners = append(learners, l)
	}
	log.Debug("found %d learners", len(learners))
	return learners, rows.Err()
}
