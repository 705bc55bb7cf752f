package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent CREATE TABLE / CREATE INDEX statements.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			email VARCHAR(100) UNIQUE NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			last_active_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id INTEGER PRIMARY KEY,
			display_name VARCHAR(100) NOT NULL,
			bio TEXT NOT NULL DEFAULT '',
			age INTEGER NOT NULL,
			gender VARCHAR(16) NOT NULL,
			interests TEXT NOT NULL DEFAULT '[]',
			photos TEXT NOT NULL DEFAULT '[]',
			latitude REAL,
			longitude REAL,
			location_updated_at DATETIME,
			preferred_genders TEXT NOT NULL DEFAULT '[]',
			min_age INTEGER NOT NULL DEFAULT 18,
			max_age INTEGER NOT NULL DEFAULT 100,
			max_distance_km REAL NOT NULL DEFAULT 50,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			sender_id INTEGER NOT NULL,
			receiver_id INTEGER NOT NULL,
			body TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			seen BOOLEAN NOT NULL DEFAULT 0,
			seen_at DATETIME,
			FOREIGN KEY (sender_id) REFERENCES users(id),
			FOREIGN KEY (receiver_id) REFERENCES users(id),
			CHECK (sender_id <> receiver_id)
		);`,
		`CREATE TABLE IF NOT EXISTS blocks (
			blocker_id INTEGER NOT NULL,
			blocked_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (blocker_id, blocked_id),
			FOREIGN KEY (blocker_id) REFERENCES users(id),
			FOREIGN KEY (blocked_id) REFERENCES users(id),
			CHECK (blocker_id <> blocked_id)
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY,
			initiator_id INTEGER NOT NULL,
			receiver_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (initiator_id) REFERENCES users(id),
			FOREIGN KEY (receiver_id) REFERENCES users(id),
			CHECK (initiator_id <> receiver_id)
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY,
			reporter_id INTEGER NOT NULL,
			reported_id INTEGER NOT NULL,
			reason TEXT NOT NULL,
			details TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (reporter_id) REFERENCES users(id),
			FOREIGN KEY (reported_id) REFERENCES users(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE INDEX IF NOT EXISTS idx_users_status ON users(status);`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_age ON profiles(age);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_receiver_unseen ON messages(receiver_id, seen);`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks(blocked_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_pair ON matches(
			MIN(initiator_id, receiver_id), MAX(initiator_id, receiver_id)
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
