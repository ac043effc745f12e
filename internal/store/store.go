package store

import (
	"context"
	"encoding/json"

	"github.com/lingua-prep/backend/internal/models"
)

// masteredThreshold is the number of correct usage records after which an
// exercise is excluded from serving to that caller identity.
const masteredThreshold = 3

// Filter narrows a catalogue read. Levels is required; empty Topics means
// unconstrained. CallerIdentity excludes already-mastered items server-side.
type Filter struct {
	Levels         []models.Level
	Topics         []string
	ExcludedIDs    []int64
	CallerIdentity string
	Limit          int
}

// Store is the backend-agnostic catalogue contract. One implementation is
// selected at process start; callers treat an unavailable store identically
// to an empty one.
type Store interface {
	// GetExercises returns matching exercises ordered by ascending usage
	// count, then descending recency, capped at Filter.Limit.
	GetExercises(ctx context.Context, f Filter) ([]models.Exercise, error)

	// SaveBatch upserts each exercise on its natural key. One item's
	// failure does not abort siblings. Returns ids of rows actually written.
	SaveBatch(ctx context.Context, exercises []models.Exercise) ([]int64, error)

	// MarkUsed increments the exercise's usage counter by one and appends
	// exactly one usage record.
	MarkUsed(ctx context.Context, exerciseID int64, sessionID, identity string, correct bool, latencyMs *int64) error

	// IsAvailable reports whether a persistence target is configured.
	IsAvailable() bool
}

// ── JSON column helpers ─────────────────────────────────

func encodeJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func decodeStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func decodeStringMap(data []byte) map[string]string {
	if len(data) == 0 {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func decodeHint(data []byte) *models.Hint {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var h models.Hint
	if err := json.Unmarshal(data, &h); err != nil {
		return nil
	}
	return &h
}
