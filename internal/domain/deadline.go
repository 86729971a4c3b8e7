package domain

import (
	"context"
	"time"
)

// SessionDeadline is the voting cutoff of a poll session. Once stored it is never moved.
type SessionDeadline struct {
	SessionID int64
	Deadline  time.Time
	CreatedAt time.Time
}

// IsExpired reports whether now is at or past the deadline.
func (d *SessionDeadline) IsExpired(now time.Time) bool {
	return !now.Before(d.Deadline)
}

// RemainingSeconds returns the whole seconds left before the deadline, never negative.
func (d *SessionDeadline) RemainingSeconds(now time.Time) int64 {
	left := d.Deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return int64(left / time.Second)
}

// DeadlineStatus is a deadline evaluated at a point in time.
// swagger:model DeadlineStatus
type DeadlineStatus struct {
	SessionID        int64     `json:"session_id"`
	Deadline         time.Time `json:"deadline"`
	IsExpired        bool      `json:"is_expired"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewDeadlineStatus evaluates d at now.
func NewDeadlineStatus(d *SessionDeadline, now time.Time) *DeadlineStatus {
	return &DeadlineStatus{
		SessionID:        d.SessionID,
		Deadline:         d.Deadline,
		IsExpired:        d.IsExpired(now),
		RemainingSeconds: d.RemainingSeconds(now),
		CreatedAt:        d.CreatedAt,
	}
}

// DeadlineRepository defines storage for session deadlines.
type DeadlineRepository interface {
	// Ensure stores deadline for the session unless one exists, and returns the stored deadline.
	Ensure(ctx context.Context, sessionID int64, deadline time.Time) (*SessionDeadline, error)
	GetBySessionID(ctx context.Context, sessionID int64) (*SessionDeadline, error)
}

// DeadlineService defines deadline lookup and lazy creation.
type DeadlineService interface {
	Ensure(ctx context.Context, sessionID int64) (*DeadlineStatus, error)
	Get(ctx context.Context, sessionID int64) (*DeadlineStatus, error)
	// Check reports whether voting is closed. Sessions without a deadline are open.
	Check(ctx context.Context, sessionID int64) (bool, error)
}
