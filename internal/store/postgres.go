package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"
	"github.com/lingua-prep/backend/internal/models"
)

// Postgres is the durable catalogue backend for shared deployments.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) IsAvailable() bool {
	return true
}

const pgExerciseColumns = `id, sentence, correct_answer, alternate_answers, topic, level,
	distractors, explanations, hint, difficulty_score, usage_count, created_at, updated_at`

func (s *Postgres) GetExercises(ctx context.Context, f Filter) ([]models.Exercise, error) {
	if len(f.Levels) == 0 {
		return nil, fmt.Errorf("get exercises: at least one level required")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	levels := make([]string, len(f.Levels))
	for i, l := range f.Levels {
		levels[i] = string(l)
	}

	args := []interface{}{pq.Array(levels)}
	query := fmt.Sprintf(`SELECT %s FROM exercises WHERE level = ANY($1)`, pgExerciseColumns)

	if len(f.Topics) > 0 {
		args = append(args, pq.Array(f.Topics))
		query += fmt.Sprintf(" AND topic = ANY($%d)", len(args))
	}
	if len(f.ExcludedIDs) > 0 {
		args = append(args, pq.Array(f.ExcludedIDs))
		query += fmt.Sprintf(" AND id <> ALL($%d)", len(args))
	}
	if f.CallerIdentity != "" {
		args = append(args, f.CallerIdentity)
		query += fmt.Sprintf(` AND NOT EXISTS (
			SELECT 1 FROM usage_records ur
			WHERE ur.exercise_id = exercises.id
			  AND ur.caller_identity = $%d
			  AND ur.correct
			HAVING COUNT(*) >= %d
		)`, len(args), masteredThreshold)
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY usage_count ASC, updated_at DESC LIMIT $%d", len(args))

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

func (s *Postgres) SaveBatch(ctx context.Context, exercises []models.Exercise) ([]int64, error) {
	var saved []int64
	for _, ex := range exercises {
		var id int64
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO exercises
			 (sentence, correct_answer, alternate_answers, topic, level,
			  distractors, explanations, hint, difficulty_score)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (sentence, correct_answer, topic, level) DO UPDATE SET
			   alternate_answers = EXCLUDED.alternate_answers,
			   distractors       = EXCLUDED.distractors,
			   explanations      = EXCLUDED.explanations,
			   hint              = EXCLUDED.hint,
			   difficulty_score  = EXCLUDED.difficulty_score,
			   updated_at        = NOW()
			 RETURNING id`,
			ex.Sentence, ex.CorrectAnswer, encodeJSON(ex.AlternateAnswers),
			ex.Topic, string(ex.Level), encodeJSON(ex.Distractors),
			encodeJSON(ex.Explanations), hintJSON(ex.Hint), ex.DifficultyScore,
		).Scan(&id)
		if err != nil {
			log.Printf("WARN: save exercise %q/%s failed: %v", ex.Topic, ex.Level, err)
			continue
		}
		saved = append(saved, id)
	}
	return saved, nil
}

func (s *Postgres) MarkUsed(ctx context.Context, exerciseID int64, sessionID, identity string, correct bool, latencyMs *int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark used: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE exercises SET usage_count = usage_count + 1 WHERE id = $1`,
		exerciseID,
	)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark used: exercise %d not found", exerciseID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO usage_records (exercise_id, session_id, caller_identity, correct, latency_ms)
		 VALUES ($1, $2, $3, $4, $5)`,
		exerciseID, sessionID, nullString(identity), correct, latencyMs,
	)
	if err != nil {
		return fmt.Errorf("append usage record: %w", err)
	}

	return tx.Commit()
}

// scanExercise reads one exercise row; both backends share the column order.
func scanExercise(rows *sql.Rows) (models.Exercise, error) {
	var ex models.Exercise
	var level string
	var alternates, distractors, explanations, hint []byte

	err := rows.Scan(&ex.ID, &ex.Sentence, &ex.CorrectAnswer, &alternates,
		&ex.Topic, &level, &distractors, &explanations, &hint,
		&ex.DifficultyScore, &ex.UsageCount, &ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		return models.Exercise{}, err
	}

	ex.Level = models.Level(level)
	ex.AlternateAnswers = decodeStrings(alternates)
	ex.Distractors = decodeStrings(distractors)
	ex.Explanations = decodeStringMap(explanations)
	ex.Hint = decodeHint(hint)
	return ex, nil
}

func hintJSON(h *models.Hint) interface{} {
	if h == nil {
		return nil
	}
	return encodeJSON(h)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
