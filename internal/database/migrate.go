package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigratePostgres applies the embedded SQL migrations to the Postgres backend.
func MigratePostgres(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// MigrateSQLite creates the SQLite schema. SQLite DDL is idempotent via
// IF NOT EXISTS, so a single inline migration is sufficient for the
// single-file backend.
func MigrateSQLite(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		email      TEXT UNIQUE NOT NULL,
		name       TEXT NOT NULL,
		password   TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS exercises (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		sentence          TEXT NOT NULL,
		correct_answer    TEXT NOT NULL,
		alternate_answers TEXT NOT NULL DEFAULT '[]',
		topic             TEXT NOT NULL,
		level             TEXT NOT NULL,
		distractors       TEXT NOT NULL DEFAULT '[]',
		explanations      TEXT NOT NULL DEFAULT '{}',
		hint              TEXT,
		difficulty_score  REAL NOT NULL DEFAULT 0,
		usage_count       INTEGER NOT NULL DEFAULT 0,
		created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(sentence, correct_answer, topic, level)
	);

	CREATE INDEX IF NOT EXISTS idx_exercises_serving ON exercises(level, usage_count);
	CREATE INDEX IF NOT EXISTS idx_exercises_topic ON exercises(topic);

	CREATE TABLE IF NOT EXISTS usage_records (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		exercise_id     INTEGER NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
		session_id      TEXT NOT NULL,
		caller_identity TEXT,
		correct         INTEGER NOT NULL DEFAULT 0,
		latency_ms      INTEGER,
		created_at      TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_usage_exercise ON usage_records(exercise_id);
	CREATE INDEX IF NOT EXISTS idx_usage_identity ON usage_records(caller_identity, exercise_id);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("sqlite migration failed: %w", err)
	}
	return nil
}
