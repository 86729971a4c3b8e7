package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"groupschedule/internal/domain"
)

const maxDisplayNameLen = 100

type participantService struct {
	repo domain.ParticipantRepository
}

// NewParticipantService creates a ParticipantService backed by repo.
func NewParticipantService(repo domain.ParticipantRepository) domain.ParticipantService {
	return &participantService{repo: repo}
}

func (s *participantService) Upsert(ctx context.Context, p *domain.Participant) (*domain.Participant, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: participant is required", domain.ErrInvalidInput)
	}
	p.ParticipantID = strings.TrimSpace(p.ParticipantID)
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.PictureURL = strings.TrimSpace(p.PictureURL)
	if p.ParticipantID == "" {
		return nil, fmt.Errorf("%w: participant_id is required", domain.ErrInvalidInput)
	}
	if len([]rune(p.DisplayName)) > maxDisplayNameLen {
		return nil, fmt.Errorf("%w: display_name must be at most %d characters", domain.ErrInvalidInput, maxDisplayNameLen)
	}
	p.UpdatedAt = time.Now()
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("upsert participant: %w", err)
	}
	return p, nil
}

func (s *participantService) GetByID(ctx context.Context, participantID string) (*domain.Participant, error) {
	p, err := s.repo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}
