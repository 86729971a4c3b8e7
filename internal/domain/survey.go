package domain

import (
	"context"
	"time"
)

// SurveyConditions are one participant's restaurant preferences for a session.
// swagger:model SurveyConditions
type SurveyConditions struct {
	ID            int64     `json:"id"`
	ParticipantID string    `json:"participant_id"`
	SessionID     int64     `json:"session_id"`
	Area          string    `json:"area"`
	GenreCodes    []string  `json:"genre_codes"`
	BudgetCode    string    `json:"budget_code"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AggregatedConditions combines the preferences of all respondents of a session.
// Areas are ordered by frequency, most common first; ties break alphabetically.
// swagger:model AggregatedConditions
type AggregatedConditions struct {
	SessionID        int64          `json:"session_id"`
	TotalRespondents int            `json:"total_respondents"`
	Areas            []string       `json:"areas"`
	GenreCounts      map[string]int `json:"genre_codes"`
	BudgetCounts     map[string]int `json:"budget_codes"`
	MostCommonArea   string         `json:"most_common_area"`
	MostCommonGenres []string       `json:"most_common_genres"`
	MostCommonBudget string         `json:"most_common_budget"`
}

// SurveyRepository defines storage for survey conditions.
type SurveyRepository interface {
	// Upsert creates or replaces the conditions for (participant, session) and sets ID and timestamps.
	Upsert(ctx context.Context, c *SurveyConditions) error
	ListBySessionID(ctx context.Context, sessionID int64) ([]*SurveyConditions, error)
}

// SurveyService defines the downstream preference survey.
type SurveyService interface {
	Save(ctx context.Context, c *SurveyConditions) (*SurveyConditions, error)
	List(ctx context.Context, sessionID int64) ([]*SurveyConditions, error)
	Aggregate(ctx context.Context, sessionID int64) (*AggregatedConditions, error)
}
