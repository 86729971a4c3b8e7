package postgres

import (
	"context"
	"database/sql"

	"groupschedule/internal/domain"

	"github.com/lib/pq"
)

type surveyRepository struct {
	DB *sql.DB
}

// NewSurveyRepository returns a domain.SurveyRepository implemented with Postgres.
func NewSurveyRepository(db *sql.DB) domain.SurveyRepository {
	return &surveyRepository{DB: db}
}

func (r *surveyRepository) Upsert(ctx context.Context, c *domain.SurveyConditions) error {
	query := `
		INSERT INTO survey_conditions (participant_id, session_id, area, genre_codes, budget_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (participant_id, session_id) DO UPDATE SET
			area = EXCLUDED.area,
			genre_codes = EXCLUDED.genre_codes,
			budget_code = EXCLUDED.budget_code,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRowContext(ctx, query,
		c.ParticipantID, c.SessionID, c.Area, pq.Array(c.GenreCodes), c.BudgetCode, c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *surveyRepository) ListBySessionID(ctx context.Context, sessionID int64) ([]*domain.SurveyConditions, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, participant_id, session_id, area, genre_codes, budget_code, created_at, updated_at
		FROM survey_conditions
		WHERE session_id = $1
		ORDER BY updated_at DESC, id DESC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conditions := make([]*domain.SurveyConditions, 0)
	for rows.Next() {
		c := &domain.SurveyConditions{}
		if err := rows.Scan(&c.ID, &c.ParticipantID, &c.SessionID, &c.Area, pq.Array(&c.GenreCodes), &c.BudgetCode, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		conditions = append(conditions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return conditions, nil
}
