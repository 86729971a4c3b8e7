package poll

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeBackend is an in-memory Backend that stores one vote per participant and session.
type fakeBackend struct {
	mu           sync.Mutex
	clock        *fakeClock
	deadlineFor  time.Duration
	deadlines    map[int64]time.Time
	votes        map[string]Vote
	submitCalls  int
	summaryCalls int
	ensureCalls  int
	submitErr    error
	summaryErr   error
	ensureErr    error
	// submitHook runs inside SubmitVote before the vote is stored.
	submitHook func()
}

func newFakeBackend(clock *fakeClock) *fakeBackend {
	return &fakeBackend{
		clock:       clock,
		deadlineFor: time.Hour,
		deadlines:   make(map[int64]time.Time),
		votes:       make(map[string]Vote),
	}
}

func backendKey(participantID string, sessionID *int64) string {
	if sessionID == nil {
		return participantID + "/-"
	}
	return participantID + "/" + strconv.FormatInt(*sessionID, 10)
}

func (b *fakeBackend) SubmitVote(ctx context.Context, v Vote) error {
	if b.submitHook != nil {
		b.submitHook()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitCalls++
	if b.submitErr != nil {
		return b.submitErr
	}
	if v.SessionID != nil {
		if at, ok := b.deadlines[*v.SessionID]; ok && !b.clock.Now().Before(at) {
			return ErrDeadlineRejected
		}
	}
	b.votes[backendKey(v.ParticipantID, v.SessionID)] = v
	return nil
}

func (b *fakeBackend) Summary(ctx context.Context, sessionID *int64) (Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summaryCalls++
	if b.summaryErr != nil {
		return Summary{}, b.summaryErr
	}
	s := Summary{VoteCounts: map[string]int{}, VotersByLabel: map[string][]Voter{}}
	keys := make([]string, 0, len(b.votes))
	for k := range b.votes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := b.votes[k]
		if !sameSession(v.SessionID, sessionID) {
			continue
		}
		s.TotalVoters++
		for _, sel := range v.Selections {
			s.VoteCounts[sel.Date]++
			s.VotersByLabel[sel.Date] = append(s.VotersByLabel[sel.Date], Voter{ParticipantID: v.ParticipantID})
		}
	}
	return s, nil
}

func (b *fakeBackend) EnsureDeadline(ctx context.Context, sessionID int64) (Deadline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureCalls++
	if b.ensureErr != nil {
		return Deadline{}, b.ensureErr
	}
	at, ok := b.deadlines[sessionID]
	if !ok {
		at = b.clock.Now().Add(b.deadlineFor)
		b.deadlines[sessionID] = at
	}
	return Deadline{SessionID: sessionID, At: at, IsExpired: !b.clock.Now().Before(at)}, nil
}

func (b *fakeBackend) networkCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submitCalls + b.summaryCalls + b.ensureCalls
}

var errTransport = errors.New("connection reset")

func int64Ptr(v int64) *int64 { return &v }
