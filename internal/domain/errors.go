package domain

import "errors"

// Sentinel errors shared by services and repositories.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrDeadlineExpired is returned when a vote arrives after the session deadline.
	ErrDeadlineExpired = errors.New("voting deadline has passed")
)
