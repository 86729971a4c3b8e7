package poll

import (
	"context"
	"time"
)

// isoLayout renders slot boundaries as YYYY-MM-DDTHH:00:00+09:00.
const isoLayout = "2006-01-02T15:04:05-07:00"

// Slot is one proposable meeting window. ID is only unique within a generation
// run; Label is the durable key that votes and tallies join on.
type Slot struct {
	ID        string
	Date      time.Time
	StartHour int
	EndHour   int
	IsWeekend bool
	Label     string
	DateKey   string
}

// Start returns the first instant of the slot.
func (s Slot) Start() time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), s.StartHour, 0, 0, 0, s.Date.Location())
}

// End returns the instant the slot ends.
func (s Slot) End() time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), s.EndHour, 0, 0, 0, s.Date.Location())
}

// Selection converts the slot into the wire form sent with a vote.
func (s Slot) Selection() Selection {
	return Selection{
		Date:      s.Label,
		StartTime: s.Start().Format(isoLayout),
		EndTime:   s.End().Format(isoLayout),
	}
}

// Selection is one selected slot inside a vote.
type Selection struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsLate    bool   `json:"is_late"`
}

// Vote is a participant's complete current vote. A nil SessionID is the session-less poll.
type Vote struct {
	ParticipantID string      `json:"participant_id"`
	SessionID     *int64      `json:"session_id"`
	Selections    []Selection `json:"selections"`
}

// Voter is a participant listed under a slot label.
type Voter struct {
	ParticipantID string `json:"user_id"`
	DisplayName   string `json:"display_name"`
}

// Summary is the tally of a session keyed by slot label.
type Summary struct {
	TotalVoters   int                `json:"total_voters"`
	VoteCounts    map[string]int     `json:"vote_counts"`
	VotersByLabel map[string][]Voter `json:"voters_by_option"`
}

// Deadline is the server's view of a session deadline.
type Deadline struct {
	SessionID int64     `json:"session_id"`
	At        time.Time `json:"deadline"`
	IsExpired bool      `json:"is_expired"`
}

// Handoff is emitted once a participant is ready for the preference survey.
type Handoff struct {
	SessionID     *int64
	ParticipantID string
}

// VoteStore is the durable vote backend. SubmitVote replaces any earlier vote
// of the same participant for the same session and returns ErrDeadlineRejected
// when the server refuses it because voting has closed.
type VoteStore interface {
	SubmitVote(ctx context.Context, v Vote) error
	Summary(ctx context.Context, sessionID *int64) (Summary, error)
}

// DeadlineService fetches a session deadline, creating it on first use.
type DeadlineService interface {
	EnsureDeadline(ctx context.Context, sessionID int64) (Deadline, error)
}

// Backend is everything a PollSession talks to over the network.
type Backend interface {
	VoteStore
	DeadlineService
}
