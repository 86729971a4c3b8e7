package domain

import (
	"context"
	"time"
)

// VoteSelection is one candidate slot a participant marked as available.
// Date carries the slot label, which is the join key for aggregation.
type VoteSelection struct {
	Date      string     `json:"date"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	IsLate    bool       `json:"is_late"`
}

// VoteRecord is a participant's complete current vote for a session.
// A nil SessionID addresses the session-less poll.
type VoteRecord struct {
	ParticipantID string          `json:"participant_id"`
	SessionID     *int64          `json:"session_id"`
	Selections    []VoteSelection `json:"selections"`
}

// Vote is a single stored selection row.
// swagger:model Vote
type Vote struct {
	ID            int64      `json:"id"`
	ParticipantID string     `json:"participant_id"`
	SessionID     *int64     `json:"session_id"`
	SelectedDate  string     `json:"selected_date"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	IsLate        bool       `json:"is_late"`
	CreatedAt     time.Time  `json:"created_at"`
}

// VoteFilter narrows vote listings. Empty fields do not filter.
type VoteFilter struct {
	ParticipantID string
	SessionID     *int64
}

// Voter is a participant listed under a slot in a summary.
type Voter struct {
	ParticipantID string `json:"user_id"`
	DisplayName   string `json:"display_name"`
}

// VoteSummary aggregates the current votes of a session by slot label.
// swagger:model VoteSummary
type VoteSummary struct {
	TotalVoters    int                `json:"total_voters"`
	VoteCounts     map[string]int     `json:"vote_counts"`
	VotersByOption map[string][]Voter `json:"voters_by_option"`
}

// SlotTally is the result of a single slot: its label, its time window and who can attend.
type SlotTally struct {
	Label     string     `json:"date_label"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	VoteCount int        `json:"vote_count"`
	Voters    []string   `json:"voters"`
}

// CompletionStatus reports whether the expected participants have voted.
// swagger:model CompletionStatus
type CompletionStatus struct {
	SessionID      int64       `json:"session_id"`
	TotalVoters    int         `json:"total_voters"`
	ExpectedVoters int         `json:"expected_voters"`
	IsComplete     bool        `json:"is_complete"`
	Voters         []Voter     `json:"voters"`
	TopSlots       []SlotTally `json:"top_dates"`
}

// SessionResults is the full outcome of a session: who voted, every slot
// result and the aggregated restaurant conditions.
// swagger:model SessionResults
type SessionResults struct {
	SessionID            int64                 `json:"session_id"`
	TotalVoters          int                   `json:"total_voters"`
	Voters               []Voter               `json:"voters"`
	SlotResults          []SlotTally           `json:"vote_results"`
	RestaurantConditions *AggregatedConditions `json:"restaurant_conditions"`
}

// VoteRepository defines storage operations for poll responses.
type VoteRepository interface {
	// Replace deletes the participant's votes for the session and stores selections in one transaction.
	Replace(ctx context.Context, participantID string, sessionID *int64, selections []VoteSelection) (int, error)
	List(ctx context.Context, filter VoteFilter, page PaginationParams) ([]*Vote, int, error)
	Delete(ctx context.Context, participantID string, sessionID *int64) (int64, error)
	Summary(ctx context.Context, sessionID *int64) (*VoteSummary, error)
	// Voters lists the distinct participants with votes in the session, ordered by id.
	Voters(ctx context.Context, sessionID int64) ([]Voter, error)
	// SlotResults groups the session's votes by slot, most votes first, then earliest start.
	SlotResults(ctx context.Context, sessionID int64) ([]SlotTally, error)
}

// VoteService defines vote submission and aggregation.
type VoteService interface {
	Submit(ctx context.Context, record *VoteRecord) (int, error)
	List(ctx context.Context, filter VoteFilter, page PaginationParams) ([]*Vote, int, error)
	Delete(ctx context.Context, participantID string, sessionID *int64) (int64, error)
	Summary(ctx context.Context, sessionID *int64) (*VoteSummary, error)
	// Completion reports voting progress. A nil expected count treats current voters as everyone expected.
	Completion(ctx context.Context, sessionID int64, expected *int) (*CompletionStatus, error)
}

// ResultsService assembles the outcome of a session across votes and the survey.
type ResultsService interface {
	Results(ctx context.Context, sessionID int64) (*SessionResults, error)
}
