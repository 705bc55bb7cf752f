package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id              BIGSERIAL PRIMARY KEY,
			email           VARCHAR(100) UNIQUE NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			status          VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
			is_admin        BOOLEAN NOT NULL DEFAULT FALSE,
			created_at      TIMESTAMPTZ NOT NULL,
			last_active_at  TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id             BIGINT PRIMARY KEY REFERENCES users(id),
			display_name        VARCHAR(100) NOT NULL,
			bio                 TEXT NOT NULL DEFAULT '',
			age                 INT NOT NULL,
			gender              VARCHAR(16) NOT NULL,
			interests           TEXT NOT NULL DEFAULT '[]',
			photos              TEXT NOT NULL DEFAULT '[]',
			latitude            DOUBLE PRECISION,
			longitude           DOUBLE PRECISION,
			location_updated_at TIMESTAMPTZ,
			preferred_genders   TEXT NOT NULL DEFAULT '[]',
			min_age             INT NOT NULL DEFAULT 18,
			max_age             INT NOT NULL DEFAULT 100,
			max_distance_km     DOUBLE PRECISION NOT NULL DEFAULT 50
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id          BIGSERIAL PRIMARY KEY,
			sender_id   BIGINT NOT NULL REFERENCES users(id),
			receiver_id BIGINT NOT NULL REFERENCES users(id),
			body        TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			seen        BOOLEAN NOT NULL DEFAULT FALSE,
			seen_at     TIMESTAMPTZ,
			CHECK (sender_id <> receiver_id)
		);`,
		`CREATE TABLE IF NOT EXISTS blocks (
			blocker_id BIGINT NOT NULL REFERENCES users(id),
			blocked_id BIGINT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (blocker_id, blocked_id),
			CHECK (blocker_id <> blocked_id)
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			id           BIGSERIAL PRIMARY KEY,
			initiator_id BIGINT NOT NULL REFERENCES users(id),
			receiver_id  BIGINT NOT NULL REFERENCES users(id),
			created_at   TIMESTAMPTZ NOT NULL,
			CHECK (initiator_id <> receiver_id)
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			id          BIGSERIAL PRIMARY KEY,
			reporter_id BIGINT NOT NULL REFERENCES users(id),
			reported_id BIGINT NOT NULL REFERENCES users(id),
			reason      TEXT NOT NULL,
			details     TEXT,
			created_at  TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_status ON users(status);`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_age ON profiles(age);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_receiver_unseen ON messages(receiver_id, seen);`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks(blocked_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_pair ON matches(
			LEAST(initiator_id, receiver_id), GREATEST(initiator_id, receiver_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_reported ON reports(reported_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
