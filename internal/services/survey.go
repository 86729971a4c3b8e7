package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"groupschedule/internal/domain"
)

const mostCommonGenreLimit = 3

type surveyService struct {
	repo domain.SurveyRepository
}

// NewSurveyService creates the preference-survey service that follows voting.
func NewSurveyService(repo domain.SurveyRepository) domain.SurveyService {
	return &surveyService{repo: repo}
}

func (s *surveyService) Save(ctx context.Context, c *domain.SurveyConditions) (*domain.SurveyConditions, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: conditions are required", domain.ErrInvalidInput)
	}
	c.ParticipantID = strings.TrimSpace(c.ParticipantID)
	if c.ParticipantID == "" {
		return nil, fmt.Errorf("%w: participant_id is required", domain.ErrInvalidInput)
	}
	if c.SessionID <= 0 {
		return nil, fmt.Errorf("%w: session_id must be positive", domain.ErrInvalidInput)
	}
	c.Area = strings.TrimSpace(c.Area)
	c.BudgetCode = strings.TrimSpace(c.BudgetCode)
	c.GenreCodes = uniqueNonEmpty(c.GenreCodes)
	c.UpdatedAt = time.Now()
	if err := s.repo.Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("save survey conditions: %w", err)
	}
	return c, nil
}

func (s *surveyService) List(ctx context.Context, sessionID int64) ([]*domain.SurveyConditions, error) {
	conditions, err := s.repo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list survey conditions: %w", err)
	}
	return conditions, nil
}

func (s *surveyService) Aggregate(ctx context.Context, sessionID int64) (*domain.AggregatedConditions, error) {
	conditions, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	areaCounts := make(map[string]int)
	genreCounts := make(map[string]int)
	budgetCounts := make(map[string]int)
	for _, c := range conditions {
		if c.Area != "" {
			areaCounts[c.Area]++
		}
		for _, g := range c.GenreCodes {
			genreCounts[g]++
		}
		if c.BudgetCode != "" {
			budgetCounts[c.BudgetCode]++
		}
	}

	agg := &domain.AggregatedConditions{
		SessionID:        sessionID,
		TotalRespondents: len(conditions),
		Areas:            rankKeys(areaCounts),
		GenreCounts:      genreCounts,
		BudgetCounts:     budgetCounts,
		MostCommonGenres: rankKeys(genreCounts),
	}
	if len(agg.Areas) > 0 {
		agg.MostCommonArea = agg.Areas[0]
	}
	if len(agg.MostCommonGenres) > mostCommonGenreLimit {
		agg.MostCommonGenres = agg.MostCommonGenres[:mostCommonGenreLimit]
	}
	if budgets := rankKeys(budgetCounts); len(budgets) > 0 {
		agg.MostCommonBudget = budgets[0]
	}
	return agg, nil
}

// rankKeys returns the keys of counts ordered by count descending, then key ascending.
func rankKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
