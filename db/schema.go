package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema создаётся при старте приложения. Миграционный инструмент не
// используется: набор таблиц небольшой и меняется вместе с кодом.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id            TEXT PRIMARY KEY,
		full_name     TEXT NOT NULL,
		email         TEXT NOT NULL,
		level         TEXT NOT NULL DEFAULT 'beginner',
		role          TEXT NOT NULL DEFAULT 'member',
		password_hash TEXT NOT NULL,
		joined_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT members_email_key UNIQUE (email)
	)`,

	`CREATE TABLE IF NOT EXISTS leagues (
		id                    TEXT PRIMARY KEY,
		name                  TEXT NOT NULL,
		surface_type          TEXT NOT NULL DEFAULT 'hard',
		entry_fee             INTEGER NOT NULL DEFAULT 0,
		max_participants      INTEGER NOT NULL,
		auto_generate_bracket BOOLEAN NOT NULL DEFAULT FALSE,
		groups_count          INTEGER,
		courts_count          INTEGER,
		final_stage_mode      TEXT,
		bracket_generated_at  TIMESTAMPTZ,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS league_applications (
		id         TEXT PRIMARY KEY,
		league_id  TEXT NOT NULL REFERENCES leagues (id) ON DELETE CASCADE,
		member_id  TEXT NOT NULL REFERENCES members (id) ON DELETE CASCADE,
		status     TEXT NOT NULL DEFAULT 'pending',
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT uq_league_member UNIQUE (league_id, member_id)
	)`,

	`CREATE TABLE IF NOT EXISTS league_matches (
		id              TEXT PRIMARY KEY,
		league_id       TEXT NOT NULL REFERENCES leagues (id) ON DELETE CASCADE,
		round           INTEGER NOT NULL,
		group_number    INTEGER NOT NULL DEFAULT 1,
		stage           TEXT NOT NULL DEFAULT 'preliminary',
		player_a        TEXT NOT NULL,
		player_b        TEXT NOT NULL,
		court           TEXT NOT NULL DEFAULT '',
		scheduled_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		status          TEXT NOT NULL DEFAULT 'scheduled',
		score_a         INTEGER,
		score_b         INTEGER,
		winner          TEXT,
		completed_at    TIMESTAMPTZ,
		next_match_id   TEXT REFERENCES league_matches (id) ON DELETE SET NULL,
		next_match_slot TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_league_matches_league_round
		ON league_matches (league_id, round)`,

	`CREATE TABLE IF NOT EXISTS match_participants (
		id         TEXT PRIMARY KEY,
		match_id   TEXT NOT NULL REFERENCES league_matches (id) ON DELETE CASCADE,
		member_id  TEXT NOT NULL REFERENCES members (id) ON DELETE CASCADE,
		team       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_match_participants_match
		ON match_participants (match_id)`,
}

// EnsureSchema приводит базу к актуальному набору таблиц.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
