package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"groupschedule/internal/domain"
)

type voteRepository struct {
	DB *sql.DB
}

// NewVoteRepository returns a domain.VoteRepository implemented with Postgres.
func NewVoteRepository(db *sql.DB) domain.VoteRepository {
	return &voteRepository{DB: db}
}

func (r *voteRepository) Replace(ctx context.Context, participantID string, sessionID *int64, selections []domain.VoteSelection) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM poll_responses WHERE participant_id = $1 AND session_id IS NOT DISTINCT FROM $2`,
		participantID, sessionID); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO poll_responses (participant_id, session_id, selected_date, start_time, end_time, is_late)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, s := range selections {
		if _, err := tx.ExecContext(ctx, query, participantID, sessionID, s.Date, s.StartTime, s.EndTime, s.IsLate); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(selections), nil
}

func (r *voteRepository) List(ctx context.Context, filter domain.VoteFilter, page domain.PaginationParams) ([]*domain.Vote, int, error) {
	var where []string
	var args []interface{}
	n := 1
	if filter.ParticipantID != "" {
		where = append(where, fmt.Sprintf("participant_id = $%d", n))
		args = append(args, filter.ParticipantID)
		n++
	}
	if filter.SessionID != nil {
		where = append(where, fmt.Sprintf("session_id = $%d", n))
		args = append(args, *filter.SessionID)
		n++
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM poll_responses `+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, participant_id, session_id, selected_date, start_time, end_time, is_late, created_at
		FROM poll_responses ` + whereSQL + `
		ORDER BY created_at DESC, id DESC`
	if limit := page.Limit(); limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", n, n+1)
		args = append(args, limit, page.Offset())
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	votes := make([]*domain.Vote, 0)
	for rows.Next() {
		v := &domain.Vote{}
		var sessionNull sql.NullInt64
		var startNull, endNull sql.NullTime
		if err := rows.Scan(&v.ID, &v.ParticipantID, &sessionNull, &v.SelectedDate, &startNull, &endNull, &v.IsLate, &v.CreatedAt); err != nil {
			return nil, 0, err
		}
		if sessionNull.Valid {
			v.SessionID = &sessionNull.Int64
		}
		if startNull.Valid {
			v.StartTime = &startNull.Time
		}
		if endNull.Valid {
			v.EndTime = &endNull.Time
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (r *voteRepository) Delete(ctx context.Context, participantID string, sessionID *int64) (int64, error) {
	query := `DELETE FROM poll_responses WHERE participant_id = $1`
	args := []interface{}{participantID}
	if sessionID != nil {
		query += ` AND session_id = $2`
		args = append(args, *sessionID)
	}
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// Summary reads every response of the session once and aggregates in memory,
// so per-label counts and the voter total come from the same snapshot.
func (r *voteRepository) Summary(ctx context.Context, sessionID *int64) (*domain.VoteSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT pr.selected_date, pr.participant_id, COALESCE(p.display_name, '')
		FROM poll_responses pr
		LEFT JOIN participants p ON p.participant_id = pr.participant_id
		WHERE pr.session_id IS NOT DISTINCT FROM $1
		ORDER BY pr.created_at, pr.id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &domain.VoteSummary{
		VoteCounts:     make(map[string]int),
		VotersByOption: make(map[string][]domain.Voter),
	}
	voters := make(map[string]struct{})
	seen := make(map[string]map[string]struct{})
	for rows.Next() {
		var label, participantID, displayName string
		if err := rows.Scan(&label, &participantID, &displayName); err != nil {
			return nil, err
		}
		voters[participantID] = struct{}{}
		if seen[label] == nil {
			seen[label] = make(map[string]struct{})
		}
		if _, dup := seen[label][participantID]; dup {
			continue
		}
		seen[label][participantID] = struct{}{}
		summary.VoteCounts[label]++
		summary.VotersByOption[label] = append(summary.VotersByOption[label], domain.Voter{
			ParticipantID: participantID,
			DisplayName:   voterName(participantID, displayName),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	summary.TotalVoters = len(voters)
	return summary, nil
}

func (r *voteRepository) Voters(ctx context.Context, sessionID int64) ([]domain.Voter, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT pr.participant_id, COALESCE(p.display_name, '')
		FROM poll_responses pr
		LEFT JOIN participants p ON p.participant_id = pr.participant_id
		WHERE pr.session_id = $1
		ORDER BY pr.participant_id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	voters := make([]domain.Voter, 0)
	for rows.Next() {
		var participantID, displayName string
		if err := rows.Scan(&participantID, &displayName); err != nil {
			return nil, err
		}
		voters = append(voters, domain.Voter{ParticipantID: participantID, DisplayName: voterName(participantID, displayName)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return voters, nil
}

// slotKey identifies a slot by label and time window.
type slotKey struct {
	label      string
	start, end time.Time
}

func (r *voteRepository) SlotResults(ctx context.Context, sessionID int64) ([]domain.SlotTally, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT pr.selected_date, pr.start_time, pr.end_time, pr.participant_id, COALESCE(p.display_name, '')
		FROM poll_responses pr
		LEFT JOIN participants p ON p.participant_id = pr.participant_id
		WHERE pr.session_id = $1
		ORDER BY pr.created_at, pr.id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var order []slotKey
	tallies := make(map[slotKey]*domain.SlotTally)
	seen := make(map[slotKey]map[string]struct{})
	for rows.Next() {
		var label, participantID, displayName string
		var startNull, endNull sql.NullTime
		if err := rows.Scan(&label, &startNull, &endNull, &participantID, &displayName); err != nil {
			return nil, err
		}
		key := slotKey{label: label, start: startNull.Time, end: endNull.Time}
		t, ok := tallies[key]
		if !ok {
			t = &domain.SlotTally{Label: label, Voters: []string{}}
			if startNull.Valid {
				start := startNull.Time
				t.StartTime = &start
			}
			if endNull.Valid {
				end := endNull.Time
				t.EndTime = &end
			}
			tallies[key] = t
			seen[key] = make(map[string]struct{})
			order = append(order, key)
		}
		if _, dup := seen[key][participantID]; dup {
			continue
		}
		seen[key][participantID] = struct{}{}
		t.VoteCount++
		t.Voters = append(t.Voters, voterName(participantID, displayName))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]domain.SlotTally, 0, len(order))
	for _, key := range order {
		results = append(results, *tallies[key])
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		if as, bs := startOrZero(a.StartTime), startOrZero(b.StartTime); !as.Equal(bs) {
			// Slots without a start time sort last.
			if as.IsZero() || bs.IsZero() {
				return bs.IsZero()
			}
			return as.Before(bs)
		}
		return a.Label < b.Label
	})
	return results, nil
}

func startOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// voterName falls back to "ユーザー" plus the last four characters of the id.
func voterName(participantID, displayName string) string {
	if displayName != "" {
		return displayName
	}
	id := []rune(participantID)
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return "ユーザー" + string(id)
}
