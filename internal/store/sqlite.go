package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lingua-prep/backend/internal/models"
)

// SQLite is the single-file catalogue backend for local and self-hosted
// deployments. Same contract as Postgres, selected once at startup.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) IsAvailable() bool {
	return true
}

func (s *SQLite) GetExercises(ctx context.Context, f Filter) ([]models.Exercise, error) {
	if len(f.Levels) == 0 {
		return nil, fmt.Errorf("get exercises: at least one level required")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	var args []interface{}
	query := `SELECT id, sentence, correct_answer, alternate_answers, topic, level,
		distractors, explanations, hint, difficulty_score, usage_count, created_at, updated_at
		FROM exercises WHERE level IN (` + placeholders(len(f.Levels)) + `)`
	for _, l := range f.Levels {
		args = append(args, string(l))
	}

	if len(f.Topics) > 0 {
		query += ` AND topic IN (` + placeholders(len(f.Topics)) + `)`
		for _, t := range f.Topics {
			args = append(args, t)
		}
	}
	if len(f.ExcludedIDs) > 0 {
		query += ` AND id NOT IN (` + placeholders(len(f.ExcludedIDs)) + `)`
		for _, id := range f.ExcludedIDs {
			args = append(args, id)
		}
	}
	if f.CallerIdentity != "" {
		query += fmt.Sprintf(` AND id NOT IN (
			SELECT ur.exercise_id FROM usage_records ur
			WHERE ur.caller_identity = ? AND ur.correct = 1
			GROUP BY ur.exercise_id
			HAVING COUNT(*) >= %d
		)`, masteredThreshold)
		args = append(args, f.CallerIdentity)
	}

	query += ` ORDER BY usage_count ASC, updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

func (s *SQLite) SaveBatch(ctx context.Context, exercises []models.Exercise) ([]int64, error) {
	var saved []int64
	now := time.Now().UTC()

	for _, ex := range exercises {
		var id int64
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO exercises
			 (sentence, correct_answer, alternate_answers, topic, level,
			  distractors, explanations, hint, difficulty_score, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (sentence, correct_answer, topic, level) DO UPDATE SET
			   alternate_answers = excluded.alternate_answers,
			   distractors       = excluded.distractors,
			   explanations      = excluded.explanations,
			   hint              = excluded.hint,
			   difficulty_score  = excluded.difficulty_score,
			   updated_at        = excluded.updated_at
			 RETURNING id`,
			ex.Sentence, ex.CorrectAnswer, encodeJSON(ex.AlternateAnswers),
			ex.Topic, string(ex.Level), encodeJSON(ex.Distractors),
			encodeJSON(ex.Explanations), hintJSON(ex.Hint), ex.DifficultyScore,
			now, now,
		).Scan(&id)
		if err != nil {
			log.Printf("WARN: save exercise %q/%s failed: %v", ex.Topic, ex.Level, err)
			continue
		}
		saved = append(saved, id)
	}
	return saved, nil
}

func (s *SQLite) MarkUsed(ctx context.Context, exerciseID int64, sessionID, identity string, correct bool, latencyMs *int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark used: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE exercises SET usage_count = usage_count + 1 WHERE id = ?`,
		exerciseID,
	)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark used: exercise %d not found", exerciseID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO usage_records (exercise_id, session_id, caller_identity, correct, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		exerciseID, sessionID, nullString(identity), correct, latencyMs, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append usage record: %w", err)
	}

	return tx.Commit()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
