package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"groupschedule/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestDeadlineRepository_Ensure(t *testing.T) {
	ctx := context.Background()
	existing := time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)
	proposed := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	created := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	cols := []string{"session_id", "deadline", "created_at"}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.SessionDeadline
		wantErr bool
	}{
		{
			name: "creates when missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO session_deadlines \(session_id, deadline\)`).
					WithArgs(int64(3), proposed).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`SELECT session_id, deadline, created_at`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(3), proposed, created))
			},
			want: &domain.SessionDeadline{SessionID: 3, Deadline: proposed, CreatedAt: created},
		},
		{
			name: "keeps the existing deadline",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`ON CONFLICT \(session_id\) DO NOTHING`).
					WithArgs(int64(3), proposed).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT session_id, deadline, created_at`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(3), existing, created))
			},
			want: &domain.SessionDeadline{SessionID: 3, Deadline: existing, CreatedAt: created},
		},
		{
			name: "insert error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO session_deadlines`).WillReturnError(sql.ErrConnDone)
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
			got, err := NewDeadlineRepository(db).Ensure(ctx, 3, proposed)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeadlineRepository_GetBySessionID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT session_id, deadline, created_at`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	got, err := NewDeadlineRepository(db).GetBySessionID(context.Background(), 9)
	require.Nil(t, got)
	require.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}
