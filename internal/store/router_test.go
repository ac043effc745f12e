package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lingua-prep/backend/internal/models"
)

func TestNew_DefaultsToDisabled(t *testing.T) {
	t.Setenv("DB_BACKEND", "")

	s, db, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if db != nil {
		t.Error("disabled store must not return a database handle")
	}
	if s.IsAvailable() {
		t.Error("disabled store must report unavailable")
	}

	// Every operation is a silent no-op.
	ctx := context.Background()
	if got, err := s.GetExercises(ctx, Filter{Levels: []models.Level{models.LevelA1}}); err != nil || len(got) != 0 {
		t.Errorf("disabled get: n=%d err=%v", len(got), err)
	}
	if ids, err := s.SaveBatch(ctx, []models.Exercise{{Sentence: "x ___"}}); err != nil || len(ids) != 0 {
		t.Errorf("disabled save: ids=%v err=%v", ids, err)
	}
	if err := s.MarkUsed(ctx, 1, "s", "", false, nil); err != nil {
		t.Errorf("disabled mark: %v", err)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	t.Setenv("DB_BACKEND", "oracle")

	if _, _, err := New(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNew_SQLiteBackend(t *testing.T) {
	t.Setenv("DB_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "test.db"))

	s, db, err := New()
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	defer db.Close()

	if !s.IsAvailable() {
		t.Error("sqlite store must report available")
	}
	if _, err := s.SaveBatch(context.Background(), []models.Exercise{{
		Sentence:      "Test ___ Satz.",
		CorrectAnswer: "ein",
		Topic:         "travel",
		Level:         models.LevelA1,
		Distractors:   []string{"eine"},
	}}); err != nil {
		t.Fatalf("save on fresh sqlite store: %v", err)
	}
}
