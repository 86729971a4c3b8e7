package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"groupschedule/internal/domain"
)

type deadlineService struct {
	repo     domain.DeadlineRepository
	duration time.Duration
	loc      *time.Location
	now      func() time.Time
}

// NewDeadlineService creates a DeadlineService that opens new sessions for
// duration. Deadlines are reported in loc; a nil loc keeps the stored zone.
func NewDeadlineService(repo domain.DeadlineRepository, duration time.Duration, loc *time.Location) domain.DeadlineService {
	return &deadlineService{
		repo:     repo,
		duration: duration,
		loc:      loc,
		now:      time.Now,
	}
}

// Ensure returns the session's deadline, creating one when none exists.
// Expired deadlines are returned as-is and never reset.
func (s *deadlineService) Ensure(ctx context.Context, sessionID int64) (*domain.DeadlineStatus, error) {
	if sessionID <= 0 {
		return nil, fmt.Errorf("%w: session_id must be positive", domain.ErrInvalidInput)
	}
	now := s.now()
	d, err := s.repo.Ensure(ctx, sessionID, now.Add(s.duration))
	if err != nil {
		return nil, fmt.Errorf("ensure deadline: %w", err)
	}
	return s.status(d, now), nil
}

func (s *deadlineService) Get(ctx context.Context, sessionID int64) (*domain.DeadlineStatus, error) {
	d, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get deadline: %w", err)
	}
	return s.status(d, s.now()), nil
}

func (s *deadlineService) Check(ctx context.Context, sessionID int64) (bool, error) {
	status, err := s.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return status.IsExpired, nil
}

func (s *deadlineService) status(d *domain.SessionDeadline, now time.Time) *domain.DeadlineStatus {
	status := domain.NewDeadlineStatus(d, now)
	if s.loc != nil {
		status.Deadline = status.Deadline.In(s.loc)
		status.CreatedAt = status.CreatedAt.In(s.loc)
	}
	return status
}
