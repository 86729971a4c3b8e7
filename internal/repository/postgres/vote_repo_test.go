package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"groupschedule/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestVoteRepository_Replace(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC)
	selections := []domain.VoteSelection{
		{Date: "6月10日(月) 19:00–21:00", StartTime: &start, EndTime: &end},
		{Date: "6月11日(火) 19:00–21:00"},
	}

	tests := []struct {
		name      string
		sessionID *int64
		mock      func(mock sqlmock.Sqlmock)
		wantCount int
		wantErr   bool
	}{
		{
			name:      "replaces votes in one transaction",
			sessionID: int64Ptr(3),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM poll_responses WHERE participant_id = \$1 AND session_id IS NOT DISTINCT FROM \$2`).
					WithArgs("U1", int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 4))
				mock.ExpectExec(`INSERT INTO poll_responses`).
					WithArgs("U1", int64(3), "6月10日(月) 19:00–21:00", start, end, false).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(`INSERT INTO poll_responses`).
					WithArgs("U1", int64(3), "6月11日(火) 19:00–21:00", nil, nil, false).
					WillReturnResult(sqlmock.NewResult(2, 1))
				mock.ExpectCommit()
			},
			wantCount: 2,
		},
		{
			name:      "null session",
			sessionID: nil,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM poll_responses`).
					WithArgs("U1", nil).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO poll_responses`).WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(`INSERT INTO poll_responses`).WillReturnResult(sqlmock.NewResult(2, 1))
				mock.ExpectCommit()
			},
			wantCount: 2,
		},
		{
			name:      "insert failure rolls back",
			sessionID: int64Ptr(3),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM poll_responses`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO poll_responses`).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewVoteRepository(db)
			got, err := repo.Replace(ctx, "U1", tt.sessionID, selections)
			if tt.wantErr {
				require.Error(t, err)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantCount, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVoteRepository_List(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	cols := []string{"id", "participant_id", "session_id", "selected_date", "start_time", "end_time", "is_late", "created_at"}

	tests := []struct {
		name      string
		filter    domain.VoteFilter
		page      domain.PaginationParams
		mock      func(mock sqlmock.Sqlmock)
		wantTotal int
		wantLen   int
		wantErr   bool
	}{
		{
			name:   "filtered and paginated",
			filter: domain.VoteFilter{ParticipantID: "U1", SessionID: int64Ptr(3)},
			page:   domain.PaginationParams{Page: 2, PageSize: 1},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM poll_responses WHERE participant_id = \$1 AND session_id = \$2`).
					WithArgs("U1", int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
				mock.ExpectQuery(`SELECT id, participant_id, session_id, selected_date.+LIMIT \$3 OFFSET \$4`).
					WithArgs("U1", int64(3), 1, 1).
					WillReturnRows(sqlmock.NewRows(cols).AddRow(7, "U1", 3, "label", nil, nil, false, created))
			},
			wantTotal: 2,
			wantLen:   1,
		},
		{
			name: "unfiltered without limit",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM poll_responses`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(`SELECT id, participant_id`).
					WillReturnRows(sqlmock.NewRows(cols))
			},
			wantTotal: 0,
			wantLen:   0,
		},
		{
			name: "count error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewVoteRepository(db)
			got, total, err := repo.List(ctx, tt.filter, tt.page)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantTotal, total)
			require.Len(t, got, tt.wantLen)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVoteRepository_List_ScansNullableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT id`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "participant_id", "session_id", "selected_date", "start_time", "end_time", "is_late", "created_at"}).
			AddRow(1, "U1", nil, "label", start, nil, true, start))

	got, _, err := NewVoteRepository(db).List(context.Background(), domain.VoteFilter{}, domain.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].SessionID)
	require.NotNil(t, got[0].StartTime)
	assert.True(t, start.Equal(*got[0].StartTime))
	assert.Nil(t, got[0].EndTime)
	assert.True(t, got[0].IsLate)
}

func TestVoteRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM poll_responses WHERE participant_id = \$1 AND session_id = \$2`).
		WithArgs("U1", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM poll_responses WHERE participant_id = \$1`).
		WithArgs("U2").
		WillReturnResult(sqlmock.NewResult(0, 5))

	repo := NewVoteRepository(db)
	n, err := repo.Delete(context.Background(), "U1", int64Ptr(3))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = repo.Delete(context.Background(), "U2", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_Summary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mon := "6月10日(月) 19:00–21:00"
	tue := "6月11日(火) 19:00–21:00"
	mock.ExpectQuery(`SELECT pr.selected_date, pr.participant_id, COALESCE\(p.display_name, ''\)`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"selected_date", "participant_id", "display_name"}).
			AddRow(mon, "U1", "Aki").
			AddRow(tue, "U1", "Aki").
			AddRow(mon, "U2abcd1234", "").
			AddRow(mon, "U2abcd1234", "").
			AddRow(tue, "U3", "Ren"))

	got, err := NewVoteRepository(db).Summary(context.Background(), int64Ptr(3))
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalVoters)
	assert.Equal(t, map[string]int{mon: 2, tue: 2}, got.VoteCounts)
	assert.Equal(t, []domain.Voter{
		{ParticipantID: "U1", DisplayName: "Aki"},
		{ParticipantID: "U2abcd1234", DisplayName: "ユーザー1234"},
	}, got.VotersByOption[mon])
	for label, c := range got.VoteCounts {
		assert.LessOrEqual(t, c, got.TotalVoters, label)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_Summary_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT pr.selected_date`).
		WithArgs(nil).
		WillReturnRows(sqlmock.NewRows([]string{"selected_date", "participant_id", "display_name"}))

	got, err := NewVoteRepository(db).Summary(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalVoters)
	assert.Empty(t, got.VoteCounts)
	assert.NotNil(t, got.VotersByOption)
}

func TestVoterName(t *testing.T) {
	assert.Equal(t, "Aki", voterName("U1", "Aki"))
	assert.Equal(t, "ユーザーwxyz", voterName("Uabcwxyz", ""))
	assert.Equal(t, "ユーザーU1", voterName("U1", ""))
}

func TestVoteRepository_Voters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT pr.participant_id, COALESCE\(p.display_name, ''\)`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"participant_id", "display_name"}).
			AddRow("U1", "Aki").
			AddRow("U2abcd9876", ""))

	got, err := NewVoteRepository(db).Voters(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []domain.Voter{
		{ParticipantID: "U1", DisplayName: "Aki"},
		{ParticipantID: "U2abcd9876", DisplayName: "ユーザー9876"},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_SlotResults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	jst := time.FixedZone("JST", 9*60*60)
	monStart := time.Date(2024, 6, 10, 19, 0, 0, 0, jst)
	tueStart := time.Date(2024, 6, 11, 19, 0, 0, 0, jst)
	wedStart := time.Date(2024, 6, 12, 19, 0, 0, 0, jst)
	mon, tue, wed, late := "6月10日(月) 19:00–21:00", "6月11日(火) 19:00–21:00", "6月12日(水) 19:00–21:00", "未定"

	mock.ExpectQuery(`SELECT pr.selected_date, pr.start_time, pr.end_time, pr.participant_id`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"selected_date", "start_time", "end_time", "participant_id", "display_name"}).
			AddRow(wed, wedStart, wedStart.Add(2*time.Hour), "U1", "Aki").
			AddRow(late, nil, nil, "U1", "Aki").
			AddRow(tue, tueStart, tueStart.Add(2*time.Hour), "U1", "Aki").
			AddRow(mon, monStart, monStart.Add(2*time.Hour), "U2abcd1234", "").
			AddRow(tue, tueStart, tueStart.Add(2*time.Hour), "U2abcd1234", "").
			AddRow(tue, tueStart, tueStart.Add(2*time.Hour), "U2abcd1234", "").
			AddRow(wed, wedStart, wedStart.Add(2*time.Hour), "U3", "Ren"))

	got, err := NewVoteRepository(db).SlotResults(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	labels := make([]string, 0, len(got))
	for _, r := range got {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{tue, wed, mon, late}, labels)

	assert.Equal(t, 2, got[0].VoteCount)
	assert.Equal(t, []string{"Aki", "ユーザー1234"}, got[0].Voters)
	require.NotNil(t, got[0].StartTime)
	assert.True(t, tueStart.Equal(*got[0].StartTime))
	require.NotNil(t, got[0].EndTime)
	assert.True(t, tueStart.Add(2*time.Hour).Equal(*got[0].EndTime))

	assert.Equal(t, []string{"Aki", "Ren"}, got[1].Voters)
	assert.Equal(t, 1, got[2].VoteCount)
	assert.Nil(t, got[3].StartTime)
	assert.Nil(t, got[3].EndTime)
	require.NoError(t, mock.ExpectationsWereMet())
}
