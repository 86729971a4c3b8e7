package domain

import (
	"context"
	"time"
)

// Participant is a voter's public profile as provided by the identity provider.
// swagger:model Participant
type Participant struct {
	ParticipantID string    `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	PictureURL    string    `json:"picture_url"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ParticipantRepository defines storage for participant profiles.
type ParticipantRepository interface {
	Upsert(ctx context.Context, p *Participant) error
	GetByID(ctx context.Context, participantID string) (*Participant, error)
}

// ParticipantService defines profile registration.
type ParticipantService interface {
	Upsert(ctx context.Context, p *Participant) (*Participant, error)
	GetByID(ctx context.Context, participantID string) (*Participant, error)
}

// TokenIssuer issues participant identity tokens.
type TokenIssuer interface {
	Issue(p *Participant, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a participant identity token and returns the profile it carries.
type TokenVerifier interface {
	Verify(token string) (*Participant, error)
}
