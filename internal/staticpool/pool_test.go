package staticpool

import (
	"strings"
	"testing"

	"github.com/lingua-prep/backend/internal/models"
)

func TestByLevels_FiltersAndCaps(t *testing.T) {
	p := NewPool()

	got := p.ByLevels([]models.Level{models.LevelA1}, 2)
	if len(got) != 2 {
		t.Fatalf("expected limit to cap at 2, got %d", len(got))
	}
	for _, ex := range got {
		if ex.Level != models.LevelA1 {
			t.Errorf("expected only A1 exercises, got %s", ex.Level)
		}
	}
}

func TestByLevels_SpansRequestedLevels(t *testing.T) {
	p := NewPool()

	got := p.ByLevels([]models.Level{models.LevelA1, models.LevelB2}, 20)
	seen := map[models.Level]bool{}
	for _, ex := range got {
		seen[ex.Level] = true
	}
	if !seen[models.LevelA1] || !seen[models.LevelB2] {
		t.Errorf("expected both requested levels represented, got %v", seen)
	}
	if seen[models.LevelA2] || seen[models.LevelB1] {
		t.Errorf("unrequested levels leaked into result: %v", seen)
	}
}

func TestByLevels_EmptyForC2(t *testing.T) {
	p := NewPool()

	if got := p.ByLevels([]models.Level{models.LevelC2}, 5); len(got) != 0 {
		t.Errorf("catalogue should have no C2 content, got %d", len(got))
	}
}

func TestAll_CatalogueIsWellFormed(t *testing.T) {
	p := NewPool()

	all := p.All()
	if len(all) == 0 {
		t.Fatal("catalogue is empty")
	}

	keys := map[string]bool{}
	for _, ex := range all {
		if !strings.Contains(ex.Sentence, models.GapMarker) {
			t.Errorf("%q has no gap marker", ex.Sentence)
		}
		if ex.CorrectAnswer == "" {
			t.Errorf("%q has no correct answer", ex.Sentence)
		}
		if len(ex.Distractors) == 0 {
			t.Errorf("%q has no distractors", ex.Sentence)
		}
		if !models.ValidLevels[ex.Level] {
			t.Errorf("%q has invalid level %q", ex.Sentence, ex.Level)
		}
		key := ex.Sentence + "|" + ex.CorrectAnswer + "|" + ex.Topic + "|" + string(ex.Level)
		if keys[key] {
			t.Errorf("duplicate natural key in catalogue: %s", key)
		}
		keys[key] = true
	}
}

func TestMinimalFallback_IsServable(t *testing.T) {
	ex := MinimalFallback()

	if !strings.Contains(ex.Sentence, models.GapMarker) {
		t.Error("minimal fallback has no gap marker")
	}
	if ex.CorrectAnswer == "" || len(ex.Distractors) == 0 {
		t.Error("minimal fallback is incomplete")
	}
	if !models.ValidLevels[ex.Level] {
		t.Errorf("minimal fallback has invalid level %q", ex.Level)
	}
}
