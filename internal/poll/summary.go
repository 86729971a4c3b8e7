package poll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// SummaryAggregator reads tallies through a VoteStore and remembers the last one that succeeded.
type SummaryAggregator struct {
	store  VoteStore
	logger *slog.Logger

	mu   sync.Mutex
	last *Summary
}

func NewSummaryAggregator(store VoteStore, logger *slog.Logger) *SummaryAggregator {
	if logger == nil {
		logger = discardLogger()
	}
	return &SummaryAggregator{store: store, logger: logger}
}

// Summarize fetches the current tally. On failure it returns ErrSummaryUnavailable
// and Last keeps returning the previous tally.
func (a *SummaryAggregator) Summarize(ctx context.Context, sessionID *int64) (Summary, error) {
	s, err := a.store.Summary(ctx, sessionID)
	if err != nil {
		a.logger.WarnContext(ctx, "summary fetch failed", "session_id", sessionValue(sessionID), "err", err)
		return Summary{}, fmt.Errorf("%w: %w", ErrSummaryUnavailable, err)
	}
	if s.VoteCounts == nil {
		s.VoteCounts = map[string]int{}
	}
	if s.VotersByLabel == nil {
		s.VotersByLabel = map[string][]Voter{}
	}
	a.mu.Lock()
	a.last = &s
	a.mu.Unlock()
	return s, nil
}

// Last returns the most recent successful summary.
func (a *SummaryAggregator) Last() (Summary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return Summary{}, false
	}
	return *a.last, true
}

// PopularLabels returns every label whose count is positive and equal to the
// maximum, sorted. Ties are all returned.
func PopularLabels(s Summary) []string {
	top := 0
	for _, n := range s.VoteCounts {
		top = max(top, n)
	}
	if top == 0 {
		return nil
	}
	var labels []string
	for label, n := range s.VoteCounts {
		if n == top {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}
