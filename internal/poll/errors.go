package poll

import "errors"

var (
	// ErrSummaryUnavailable means the tally could not be fetched. The previous summary stays in place.
	ErrSummaryUnavailable = errors.New("vote summary unavailable")
	// ErrDeadlineFetchFailed means the deadline could not be ensured. Voting stays open; the server re-checks.
	ErrDeadlineFetchFailed = errors.New("deadline fetch failed")
	ErrEmptySelection      = errors.New("no slot selected")
	// ErrDeadlineExpired is terminal for the session.
	ErrDeadlineExpired = errors.New("voting deadline has passed")
	// ErrSubmissionFailed is a retryable submit failure. The selection is left untouched.
	ErrSubmissionFailed = errors.New("vote submission failed")
	ErrVoteNotSaved     = errors.New("vote has not been saved")
	ErrSessionClosed    = errors.New("poll session is closed")
	ErrNotInitialized   = errors.New("poll session is not initialized")

	// ErrDeadlineRejected is returned by backends when the server refused a vote because the deadline passed.
	ErrDeadlineRejected = errors.New("vote rejected: deadline expired")
)
