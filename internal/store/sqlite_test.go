package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/lingua-prep/backend/internal/database"
	"github.com/lingua-prep/backend/internal/models"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := database.ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.MigrateSQLite(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return NewSQLite(db)
}

func sampleExercise(i int) models.Exercise {
	return models.Exercise{
		Sentence:      fmt.Sprintf("Beispiel %d mit ___ Lücke.", i),
		CorrectAnswer: "einer",
		Topic:         "daily routine",
		Level:         models.LevelA1,
		Distractors:   []string{"eine", "einen", "einem"},
		Explanations: map[string]string{
			"en": "Dative feminine article.",
		},
		Hint:            &models.Hint{Text: "Which case does 'mit' govern?"},
		DifficultyScore: 1.5,
	}
}

func TestSaveBatch_AssignsIDs(t *testing.T) {
	s := newTestSQLite(t)

	ids, err := s.SaveBatch(context.Background(), []models.Exercise{sampleExercise(1), sampleExercise(2)})
	if err != nil {
		t.Fatalf("save batch: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	if ids[0] == ids[1] || ids[0] <= 0 {
		t.Errorf("ids not distinct positive: %v", ids)
	}
}

func TestSaveBatch_UpsertIsIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first, err := s.SaveBatch(ctx, []models.Exercise{sampleExercise(1)})
	if err != nil || len(first) != 1 {
		t.Fatalf("first save: ids=%v err=%v", first, err)
	}

	if err := s.MarkUsed(ctx, first[0], "s-1", "user-1", false, nil); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	// Re-saving the same natural key with new content must update in place
	// and leave the usage counter alone.
	updated := sampleExercise(1)
	updated.Explanations = map[string]string{"en": "Revised explanation."}
	second, err := s.SaveBatch(ctx, []models.Exercise{updated})
	if err != nil || len(second) != 1 {
		t.Fatalf("second save: ids=%v err=%v", second, err)
	}
	if second[0] != first[0] {
		t.Errorf("upsert created a new row: %d then %d", first[0], second[0])
	}

	got, err := s.GetExercises(ctx, Filter{Levels: []models.Level{models.LevelA1}})
	if err != nil {
		t.Fatalf("get exercises: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected a single row, got %d", len(got))
	}
	if got[0].UsageCount != 1 {
		t.Errorf("upsert must not touch usage_count, got %d", got[0].UsageCount)
	}
	if got[0].Explanations["en"] != "Revised explanation." {
		t.Errorf("upsert did not refresh content: %q", got[0].Explanations["en"])
	}
}

func TestSaveBatch_RoundTripsJSONColumns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	in := sampleExercise(1)
	in.AlternateAnswers = []string{"einer", "einem"}
	if _, err := s.SaveBatch(ctx, []models.Exercise{in}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetExercises(ctx, Filter{Levels: []models.Level{models.LevelA1}})
	if err != nil || len(got) != 1 {
		t.Fatalf("get: n=%d err=%v", len(got), err)
	}
	ex := got[0]
	if len(ex.AlternateAnswers) != 2 || ex.AlternateAnswers[1] != "einem" {
		t.Errorf("alternate answers lost: %v", ex.AlternateAnswers)
	}
	if len(ex.Distractors) != 3 {
		t.Errorf("distractors lost: %v", ex.Distractors)
	}
	if ex.Hint == nil || ex.Hint.Text == "" {
		t.Errorf("hint lost: %+v", ex.Hint)
	}
}

func TestGetExercises_OrdersByUsage(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	ids, err := s.SaveBatch(ctx, []models.Exercise{sampleExercise(1), sampleExercise(2), sampleExercise(3)})
	if err != nil || len(ids) != 3 {
		t.Fatalf("save: ids=%v err=%v", ids, err)
	}

	// Use the first exercise twice and the second once; the third stays cold.
	for _, id := range []int64{ids[0], ids[0], ids[1]} {
		if err := s.MarkUsed(ctx, id, "s-1", "", false, nil); err != nil {
			t.Fatalf("mark used %d: %v", id, err)
		}
	}

	got, err := s.GetExercises(ctx, Filter{Levels: []models.Level{models.LevelA1}})
	if err != nil || len(got) != 3 {
		t.Fatalf("get: n=%d err=%v", len(got), err)
	}
	if got[0].ID != ids[2] {
		t.Errorf("least-used exercise must come first, got id %d", got[0].ID)
	}
	if got[2].ID != ids[0] {
		t.Errorf("most-used exercise must come last, got id %d", got[2].ID)
	}
}

func TestGetExercises_Filters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	b1 := sampleExercise(1)
	b1.Level = models.LevelB1
	b1.Topic = "travel"
	ids, err := s.SaveBatch(ctx, []models.Exercise{sampleExercise(2), b1})
	if err != nil || len(ids) != 2 {
		t.Fatalf("save: ids=%v err=%v", ids, err)
	}

	got, err := s.GetExercises(ctx, Filter{Levels: []models.Level{models.LevelB1}})
	if err != nil {
		t.Fatalf("get by level: %v", err)
	}
	if len(got) != 1 || got[0].Level != models.LevelB1 {
		t.Fatalf("level filter leaked: %+v", got)
	}

	got, err = s.GetExercises(ctx, Filter{
		Levels: []models.Level{models.LevelA1, models.LevelB1},
		Topics: []string{"travel"},
	})
	if err != nil {
		t.Fatalf("get by topic: %v", err)
	}
	if len(got) != 1 || got[0].Topic != "travel" {
		t.Fatalf("topic filter leaked: %+v", got)
	}

	got, err = s.GetExercises(ctx, Filter{
		Levels:      []models.Level{models.LevelA1, models.LevelB1},
		ExcludedIDs: []int64{ids[0]},
	})
	if err != nil {
		t.Fatalf("get with exclusions: %v", err)
	}
	for _, ex := range got {
		if ex.ID == ids[0] {
			t.Errorf("excluded id %d was returned", ids[0])
		}
	}
}

func TestGetExercises_RequiresLevel(t *testing.T) {
	s := newTestSQLite(t)

	if _, err := s.GetExercises(context.Background(), Filter{}); err == nil {
		t.Error("expected error for empty level set")
	}
}

func TestGetExercises_ExcludesMasteredForIdentity(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	ids, err := s.SaveBatch(ctx, []models.Exercise{sampleExercise(1), sampleExercise(2)})
	if err != nil || len(ids) != 2 {
		t.Fatalf("save: ids=%v err=%v", ids, err)
	}

	// Three correct answers push the first exercise over the mastery bar for
	// this learner only.
	for i := 0; i < masteredThreshold; i++ {
		if err := s.MarkUsed(ctx, ids[0], fmt.Sprintf("s-%d", i), "user-1", true, nil); err != nil {
			t.Fatalf("mark used: %v", err)
		}
	}

	got, err := s.GetExercises(ctx, Filter{Levels: []models.Level{models.LevelA1}, CallerIdentity: "user-1"})
	if err != nil {
		t.Fatalf("get for learner: %v", err)
	}
	for _, ex := range got {
		if ex.ID == ids[0] {
			t.Errorf("mastered exercise %d served to its learner", ids[0])
		}
	}
	if len(got) != 1 {
		t.Errorf("expected the unmastered exercise only, got %d", len(got))
	}

	// Anonymous callers and other learners still see it.
	got, err = s.GetExercises(ctx, Filter{Levels: []models.Level{models.LevelA1}})
	if err != nil || len(got) != 2 {
		t.Fatalf("anonymous get: n=%d err=%v", len(got), err)
	}
	got, err = s.GetExercises(ctx, Filter{Levels: []models.Level{models.LevelA1}, CallerIdentity: "user-2"})
	if err != nil || len(got) != 2 {
		t.Fatalf("other learner get: n=%d err=%v", len(got), err)
	}
}

func TestGetExercises_IncorrectAnswersDoNotMaster(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	ids, err := s.SaveBatch(ctx, []models.Exercise{sampleExercise(1)})
	if err != nil || len(ids) != 1 {
		t.Fatalf("save: ids=%v err=%v", ids, err)
	}

	for i := 0; i < masteredThreshold+2; i++ {
		if err := s.MarkUsed(ctx, ids[0], "s-1", "user-1", false, nil); err != nil {
			t.Fatalf("mark used: %v", err)
		}
	}

	got, err := s.GetExercises(ctx, Filter{Levels: []models.Level{models.LevelA1}, CallerIdentity: "user-1"})
	if err != nil || len(got) != 1 {
		t.Fatalf("wrong answers must not hide the exercise: n=%d err=%v", len(got), err)
	}
}

func TestMarkUsed_IncrementsAndRecords(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	ids, err := s.SaveBatch(ctx, []models.Exercise{sampleExercise(1)})
	if err != nil || len(ids) != 1 {
		t.Fatalf("save: ids=%v err=%v", ids, err)
	}

	latency := int64(850)
	if err := s.MarkUsed(ctx, ids[0], "s-1", "user-1", true, &latency); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	got, err := s.GetExercises(ctx, Filter{Levels: []models.Level{models.LevelA1}})
	if err != nil || len(got) != 1 {
		t.Fatalf("get: n=%d err=%v", len(got), err)
	}
	if got[0].UsageCount != 1 {
		t.Errorf("usage_count = %d, want 1", got[0].UsageCount)
	}

	var records int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM usage_records WHERE exercise_id = ?`, ids[0]).Scan(&records); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if records != 1 {
		t.Errorf("usage_records = %d, want 1", records)
	}
}

func TestMarkUsed_UnknownExercise(t *testing.T) {
	s := newTestSQLite(t)

	if err := s.MarkUsed(context.Background(), 9999, "s-1", "", false, nil); err == nil {
		t.Error("expected error for unknown exercise id")
	}
}
