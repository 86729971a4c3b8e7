package services

import (
	"context"
	"fmt"

	"groupschedule/internal/domain"
)

type resultsService struct {
	voteRepo domain.VoteRepository
	survey   domain.SurveyService
}

// NewResultsService creates a ResultsService reading votes from voteRepo and
// restaurant preferences through survey.
func NewResultsService(voteRepo domain.VoteRepository, survey domain.SurveyService) domain.ResultsService {
	return &resultsService{voteRepo: voteRepo, survey: survey}
}

func (s *resultsService) Results(ctx context.Context, sessionID int64) (*domain.SessionResults, error) {
	if sessionID <= 0 {
		return nil, fmt.Errorf("%w: session_id must be positive", domain.ErrInvalidInput)
	}
	voters, err := s.voteRepo.Voters(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	slots, err := s.voteRepo.SlotResults(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("slot results: %w", err)
	}
	conditions, err := s.survey.Aggregate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &domain.SessionResults{
		SessionID:            sessionID,
		TotalVoters:          len(voters),
		Voters:               voters,
		SlotResults:          slots,
		RestaurantConditions: conditions,
	}, nil
}
