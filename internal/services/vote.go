package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"groupschedule/internal/domain"
)

const topSlotLimit = 5

type voteService struct {
	voteRepo     domain.VoteRepository
	deadlineRepo domain.DeadlineRepository
	now          func() time.Time
}

// NewVoteService creates a VoteService. Submissions are checked against the
// session deadline stored in deadlineRepo.
func NewVoteService(voteRepo domain.VoteRepository, deadlineRepo domain.DeadlineRepository) domain.VoteService {
	return &voteService{
		voteRepo:     voteRepo,
		deadlineRepo: deadlineRepo,
		now:          time.Now,
	}
}

func (s *voteService) Submit(ctx context.Context, record *domain.VoteRecord) (int, error) {
	if record == nil {
		return 0, fmt.Errorf("%w: vote is required", domain.ErrInvalidInput)
	}
	record.ParticipantID = strings.TrimSpace(record.ParticipantID)
	if record.ParticipantID == "" {
		return 0, fmt.Errorf("%w: participant_id is required", domain.ErrInvalidInput)
	}
	if len(record.Selections) == 0 {
		return 0, fmt.Errorf("%w: at least one selection is required", domain.ErrInvalidInput)
	}
	for i, sel := range record.Selections {
		if strings.TrimSpace(sel.Date) == "" {
			return 0, fmt.Errorf("%w: selections[%d].date is required", domain.ErrInvalidInput, i)
		}
		if sel.StartTime != nil && sel.EndTime != nil && sel.EndTime.Before(*sel.StartTime) {
			return 0, fmt.Errorf("%w: selections[%d] ends before it starts", domain.ErrInvalidInput, i)
		}
	}

	if record.SessionID != nil {
		deadline, err := s.deadlineRepo.GetBySessionID(ctx, *record.SessionID)
		switch {
		case err == nil:
			if deadline.IsExpired(s.now()) {
				return 0, domain.ErrDeadlineExpired
			}
		case errors.Is(err, domain.ErrNotFound):
			// Sessions without a deadline accept votes.
		default:
			return 0, fmt.Errorf("get deadline: %w", err)
		}
	}

	saved, err := s.voteRepo.Replace(ctx, record.ParticipantID, record.SessionID, record.Selections)
	if err != nil {
		return 0, fmt.Errorf("replace votes: %w", err)
	}
	return saved, nil
}

func (s *voteService) List(ctx context.Context, filter domain.VoteFilter, page domain.PaginationParams) ([]*domain.Vote, int, error) {
	votes, total, err := s.voteRepo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list votes: %w", err)
	}
	return votes, total, nil
}

func (s *voteService) Delete(ctx context.Context, participantID string, sessionID *int64) (int64, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return 0, fmt.Errorf("%w: participant_id is required", domain.ErrInvalidInput)
	}
	n, err := s.voteRepo.Delete(ctx, participantID, sessionID)
	if err != nil {
		return 0, fmt.Errorf("delete votes: %w", err)
	}
	return n, nil
}

func (s *voteService) Summary(ctx context.Context, sessionID *int64) (*domain.VoteSummary, error) {
	summary, err := s.voteRepo.Summary(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("summarize votes: %w", err)
	}
	return summary, nil
}

func (s *voteService) Completion(ctx context.Context, sessionID int64, expected *int) (*domain.CompletionStatus, error) {
	if expected != nil && *expected < 0 {
		return nil, fmt.Errorf("%w: expected_voters must not be negative", domain.ErrInvalidInput)
	}
	voters, err := s.voteRepo.Voters(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	slots, err := s.voteRepo.SlotResults(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("slot results: %w", err)
	}
	expectedVoters := len(voters)
	if expected != nil {
		expectedVoters = *expected
	}
	if len(slots) > topSlotLimit {
		slots = slots[:topSlotLimit]
	}
	return &domain.CompletionStatus{
		SessionID:      sessionID,
		TotalVoters:    len(voters),
		ExpectedVoters: expectedVoters,
		IsComplete:     len(voters) > 0 && len(voters) >= expectedVoters,
		Voters:         voters,
		TopSlots:       slots,
	}, nil
}
