package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates every table the service needs.
// Safe to call multiple times; all statements use IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS participants (
    participant_id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT '',
    picture_url TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS poll_responses (
    id BIGSERIAL PRIMARY KEY,
    participant_id TEXT NOT NULL,
    session_id BIGINT,
    selected_date TEXT NOT NULL,
    start_time TIMESTAMPTZ,
    end_time TIMESTAMPTZ,
    is_late BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_poll_responses_session ON poll_responses(session_id);
CREATE INDEX IF NOT EXISTS idx_poll_responses_participant ON poll_responses(participant_id, session_id);

CREATE TABLE IF NOT EXISTS session_deadlines (
    session_id BIGINT PRIMARY KEY,
    deadline TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS survey_conditions (
    id BIGSERIAL PRIMARY KEY,
    participant_id TEXT NOT NULL,
    session_id BIGINT NOT NULL,
    area TEXT NOT NULL DEFAULT '',
    genre_codes TEXT[],
    budget_code TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (participant_id, session_id)
);
`
