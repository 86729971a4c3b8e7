package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"groupschedule/internal/domain"
)

type deadlineRepository struct {
	DB *sql.DB
}

// NewDeadlineRepository returns a domain.DeadlineRepository implemented with Postgres.
func NewDeadlineRepository(db *sql.DB) domain.DeadlineRepository {
	return &deadlineRepository{DB: db}
}

// Ensure never overwrites an existing row, so concurrent callers all read back
// the first deadline written for the session.
func (r *deadlineRepository) Ensure(ctx context.Context, sessionID int64, deadline time.Time) (*domain.SessionDeadline, error) {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO session_deadlines (session_id, deadline)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO NOTHING
	`, sessionID, deadline)
	if err != nil {
		return nil, err
	}
	return r.GetBySessionID(ctx, sessionID)
}

func (r *deadlineRepository) GetBySessionID(ctx context.Context, sessionID int64) (*domain.SessionDeadline, error) {
	d := &domain.SessionDeadline{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT session_id, deadline, created_at
		FROM session_deadlines
		WHERE session_id = $1
	`, sessionID).Scan(&d.SessionID, &d.Deadline, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}
