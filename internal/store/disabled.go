package store

import (
	"context"

	"github.com/lingua-prep/backend/internal/models"
)

// Disabled is the no-op backend used when no persistence target is
// configured. Reads are empty, writes succeed without effect, so callers
// need no special casing.
type Disabled struct{}

func NewDisabled() *Disabled {
	return &Disabled{}
}

func (d *Disabled) GetExercises(ctx context.Context, f Filter) ([]models.Exercise, error) {
	return nil, nil
}

func (d *Disabled) SaveBatch(ctx context.Context, exercises []models.Exercise) ([]int64, error) {
	return nil, nil
}

func (d *Disabled) MarkUsed(ctx context.Context, exerciseID int64, sessionID, identity string, correct bool, latencyMs *int64) error {
	return nil
}

func (d *Disabled) IsAvailable() bool {
	return false
}
