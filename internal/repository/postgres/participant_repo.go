package postgres

import (
	"context"
	"database/sql"
	"errors"

	"groupschedule/internal/domain"
)

type participantRepository struct {
	DB *sql.DB
}

// NewParticipantRepository returns a domain.ParticipantRepository implemented with Postgres.
func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

func (r *participantRepository) Upsert(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (participant_id, display_name, picture_url, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			picture_url = EXCLUDED.picture_url,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, p.ParticipantID, p.DisplayName, p.PictureURL, p.UpdatedAt)
	return err
}

func (r *participantRepository) GetByID(ctx context.Context, participantID string) (*domain.Participant, error) {
	p := &domain.Participant{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT participant_id, display_name, picture_url, updated_at
		FROM participants
		WHERE participant_id = $1
	`, participantID).Scan(&p.ParticipantID, &p.DisplayName, &p.PictureURL, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
