package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"groupschedule/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVoteRepo is an in-memory VoteRepository keyed by participant and session.
type fakeVoteRepo struct {
	rows    map[string][]domain.VoteSelection
	err     error
	replace int
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{
		rows: make(map[string][]domain.VoteSelection),
	}
}

func voteKey(participantID string, sessionID *int64) string {
	if sessionID == nil {
		return participantID + "|-"
	}
	return participantID + "|" + strconv.FormatInt(*sessionID, 10)
}

func (f *fakeVoteRepo) Replace(ctx context.Context, participantID string, sessionID *int64, selections []domain.VoteSelection) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.replace++
	f.rows[voteKey(participantID, sessionID)] = append([]domain.VoteSelection(nil), selections...)
	return len(selections), nil
}

func (f *fakeVoteRepo) List(ctx context.Context, filter domain.VoteFilter, page domain.PaginationParams) ([]*domain.Vote, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	sels := f.rows[voteKey(filter.ParticipantID, filter.SessionID)]
	out := make([]*domain.Vote, 0, len(sels))
	for i, s := range sels {
		out = append(out, &domain.Vote{ID: int64(i + 1), ParticipantID: filter.ParticipantID, SessionID: filter.SessionID, SelectedDate: s.Date})
	}
	return out, len(out), nil
}

func (f *fakeVoteRepo) Delete(ctx context.Context, participantID string, sessionID *int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	key := voteKey(participantID, sessionID)
	n := int64(len(f.rows[key]))
	delete(f.rows, key)
	return n, nil
}

// Summary counts every stored participant; tests use a single session.
func (f *fakeVoteRepo) Summary(ctx context.Context, sessionID *int64) (*domain.VoteSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := &domain.VoteSummary{VoteCounts: map[string]int{}, VotersByOption: map[string][]domain.Voter{}}
	for key, sels := range f.rows {
		s.TotalVoters++
		seen := map[string]bool{}
		for _, sel := range sels {
			if seen[sel.Date] {
				continue
			}
			seen[sel.Date] = true
			s.VoteCounts[sel.Date]++
			s.VotersByOption[sel.Date] = append(s.VotersByOption[sel.Date], domain.Voter{ParticipantID: key})
		}
	}
	return s, nil
}

// Voters lists every stored participant; tests use a single session.
func (f *fakeVoteRepo) Voters(ctx context.Context, sessionID int64) ([]domain.Voter, error) {
	if f.err != nil {
		return nil, f.err
	}
	voters := make([]domain.Voter, 0, len(f.rows))
	for key := range f.rows {
		participantID, _, _ := strings.Cut(key, "|")
		voters = append(voters, domain.Voter{ParticipantID: participantID, DisplayName: participantID})
	}
	sort.Slice(voters, func(i, j int) bool { return voters[i].ParticipantID < voters[j].ParticipantID })
	return voters, nil
}

// SlotResults groups every stored selection by label, most votes first.
func (f *fakeVoteRepo) SlotResults(ctx context.Context, sessionID int64) ([]domain.SlotTally, error) {
	if f.err != nil {
		return nil, f.err
	}
	byLabel := map[string]*domain.SlotTally{}
	keys := make([]string, 0, len(f.rows))
	for key := range f.rows {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		participantID, _, _ := strings.Cut(key, "|")
		for _, sel := range f.rows[key] {
			t, ok := byLabel[sel.Date]
			if !ok {
				t = &domain.SlotTally{Label: sel.Date, StartTime: sel.StartTime, EndTime: sel.EndTime}
				byLabel[sel.Date] = t
			}
			t.VoteCount++
			t.Voters = append(t.Voters, participantID)
		}
	}
	out := make([]domain.SlotTally, 0, len(byLabel))
	for _, t := range byLabel {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VoteCount != out[j].VoteCount {
			return out[i].VoteCount > out[j].VoteCount
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

// tallyCounts renders tallies as "label:count" for compact assertions.
func tallyCounts(tallies []domain.SlotTally) []string {
	out := make([]string, 0, len(tallies))
	for _, t := range tallies {
		out = append(out, fmt.Sprintf("%s:%d", t.Label, t.VoteCount))
	}
	return out
}

// fakeDeadlineRepo is an in-memory DeadlineRepository.
type fakeDeadlineRepo struct {
	byID  map[int64]*domain.SessionDeadline
	err   error
	calls int
}

func newFakeDeadlineRepo() *fakeDeadlineRepo {
	return &fakeDeadlineRepo{byID: make(map[int64]*domain.SessionDeadline)}
}

func (f *fakeDeadlineRepo) Ensure(ctx context.Context, sessionID int64, deadline time.Time) (*domain.SessionDeadline, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.byID[sessionID]; ok {
		return d, nil
	}
	d := &domain.SessionDeadline{SessionID: sessionID, Deadline: deadline, CreatedAt: deadline}
	f.byID[sessionID] = d
	return d, nil
}

func (f *fakeDeadlineRepo) GetBySessionID(ctx context.Context, sessionID int64) (*domain.SessionDeadline, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.byID[sessionID]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestVoteService_Submit(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(time.Hour)
	end := now

	tests := []struct {
		name      string
		record    *domain.VoteRecord
		deadline  *domain.SessionDeadline
		repoErr   error
		wantSaved int
		wantErr   error
	}{
		{
			name:      "accepted before deadline",
			record:    &domain.VoteRecord{ParticipantID: " U1 ", SessionID: int64Ptr(3), Selections: []domain.VoteSelection{{Date: "a"}, {Date: "b"}}},
			deadline:  &domain.SessionDeadline{SessionID: 3, Deadline: now.Add(time.Minute)},
			wantSaved: 2,
		},
		{
			name:      "session without deadline is open",
			record:    &domain.VoteRecord{ParticipantID: "U1", SessionID: int64Ptr(4), Selections: []domain.VoteSelection{{Date: "a"}}},
			wantSaved: 1,
		},
		{
			name:      "sessionless poll skips deadline",
			record:    &domain.VoteRecord{ParticipantID: "U1", Selections: []domain.VoteSelection{{Date: "a"}}},
			wantSaved: 1,
		},
		{
			name:     "rejected at deadline",
			record:   &domain.VoteRecord{ParticipantID: "U1", SessionID: int64Ptr(3), Selections: []domain.VoteSelection{{Date: "a"}}},
			deadline: &domain.SessionDeadline{SessionID: 3, Deadline: now},
			wantErr:  domain.ErrDeadlineExpired,
		},
		{
			name:    "empty selection",
			record:  &domain.VoteRecord{ParticipantID: "U1", SessionID: int64Ptr(3)},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing participant",
			record:  &domain.VoteRecord{Selections: []domain.VoteSelection{{Date: "a"}}},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "blank label",
			record:  &domain.VoteRecord{ParticipantID: "U1", Selections: []domain.VoteSelection{{Date: " "}}},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "inverted range",
			record:  &domain.VoteRecord{ParticipantID: "U1", Selections: []domain.VoteSelection{{Date: "a", StartTime: &start, EndTime: &end}}},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "nil record",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "repository failure",
			record:  &domain.VoteRecord{ParticipantID: "U1", Selections: []domain.VoteSelection{{Date: "a"}}},
			repoErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			votes := newFakeVoteRepo()
			votes.err = tt.repoErr
			deadlines := newFakeDeadlineRepo()
			if tt.deadline != nil {
				deadlines.byID[tt.deadline.SessionID] = tt.deadline
			}
			svc := NewVoteService(votes, deadlines).(*voteService)
			svc.now = func() time.Time { return now }

			got, err := svc.Submit(context.Background(), tt.record)
			if tt.repoErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.repoErr)
				return
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, votes.replace)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSaved, got)
		})
	}
}

func TestVoteService_Submit_ReplacesPreviousVote(t *testing.T) {
	votes := newFakeVoteRepo()
	svc := NewVoteService(votes, newFakeDeadlineRepo())
	ctx := context.Background()

	_, err := svc.Submit(ctx, &domain.VoteRecord{ParticipantID: "U1", SessionID: int64Ptr(1), Selections: []domain.VoteSelection{{Date: "a"}, {Date: "b"}}})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, &domain.VoteRecord{ParticipantID: "U1", SessionID: int64Ptr(1), Selections: []domain.VoteSelection{{Date: "c"}}})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, int64Ptr(1))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalVoters)
	assert.Equal(t, map[string]int{"c": 1}, summary.VoteCounts)
}

func TestVoteService_Submit_DeadlineLookupError(t *testing.T) {
	deadlines := newFakeDeadlineRepo()
	deadlines.err = errors.New("timeout")
	svc := NewVoteService(newFakeVoteRepo(), deadlines)

	_, err := svc.Submit(context.Background(), &domain.VoteRecord{ParticipantID: "U1", SessionID: int64Ptr(1), Selections: []domain.VoteSelection{{Date: "a"}}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDeadlineExpired)
}

func TestVoteService_Delete(t *testing.T) {
	votes := newFakeVoteRepo()
	svc := NewVoteService(votes, newFakeDeadlineRepo())
	ctx := context.Background()

	_, err := svc.Submit(ctx, &domain.VoteRecord{ParticipantID: "U1", Selections: []domain.VoteSelection{{Date: "a"}, {Date: "b"}}})
	require.NoError(t, err)

	n, err := svc.Delete(ctx, "U1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.Delete(ctx, "  ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVoteService_Completion(t *testing.T) {
	ctx := context.Background()
	votes := newFakeVoteRepo()
	svc := NewVoteService(votes, newFakeDeadlineRepo())

	status, err := svc.Completion(ctx, 1, nil)
	require.NoError(t, err)
	assert.False(t, status.IsComplete, "no voters is never complete")
	assert.Empty(t, status.TopSlots)

	for _, r := range []domain.VoteRecord{
		{ParticipantID: "U1", Selections: []domain.VoteSelection{{Date: "b"}, {Date: "a"}, {Date: "c"}, {Date: "d"}, {Date: "e"}, {Date: "f"}}},
		{ParticipantID: "U2", Selections: []domain.VoteSelection{{Date: "f"}, {Date: "e"}}},
	} {
		r := r
		_, err := svc.Submit(ctx, &r)
		require.NoError(t, err)
	}

	status, err = svc.Completion(ctx, 1, nil)
	require.NoError(t, err)
	assert.True(t, status.IsComplete)
	assert.Equal(t, 2, status.ExpectedVoters)
	assert.Equal(t, []string{"e:2", "f:2", "a:1", "b:1", "c:1"}, tallyCounts(status.TopSlots))
	assert.Equal(t, []string{"U1", "U2"}, status.TopSlots[0].Voters)
	assert.Equal(t, []domain.Voter{
		{ParticipantID: "U1", DisplayName: "U1"},
		{ParticipantID: "U2", DisplayName: "U2"},
	}, status.Voters)

	status, err = svc.Completion(ctx, 1, intPtr(3))
	require.NoError(t, err)
	assert.False(t, status.IsComplete)
	assert.Equal(t, 3, status.ExpectedVoters)

	_, err = svc.Completion(ctx, 1, intPtr(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVoteService_Completion_CarriesSlotTimes(t *testing.T) {
	ctx := context.Background()
	votes := newFakeVoteRepo()
	svc := NewVoteService(votes, newFakeDeadlineRepo())
	start := time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	_, err := svc.Submit(ctx, &domain.VoteRecord{
		ParticipantID: "U1",
		Selections:    []domain.VoteSelection{{Date: "6月10日(月) 19:00–21:00", StartTime: &start, EndTime: &end}},
	})
	require.NoError(t, err)

	status, err := svc.Completion(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, status.TopSlots, 1)
	require.NotNil(t, status.TopSlots[0].StartTime)
	assert.True(t, start.Equal(*status.TopSlots[0].StartTime))
	assert.True(t, end.Equal(*status.TopSlots[0].EndTime))

	votes.err = errors.New("db down")
	_, err = svc.Completion(ctx, 1, nil)
	assert.Error(t, err)
}
