package exercises

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/lingua-prep/backend/internal/generator"
	"github.com/lingua-prep/backend/internal/models"
	"github.com/lingua-prep/backend/internal/staticpool"
	"github.com/lingua-prep/backend/internal/store"
)

const (
	defaultCount = 5
	maxCount     = 20
)

// Service resolves batch requests through the ordered fallback chain:
// cache probe, generation, cache again, static pool. Each step either
// produces a terminal result or falls through to the next.
type Service struct {
	store     store.Store
	generator *generator.Generator
	pool      *staticpool.Pool

	// Fire-and-forget writes carry their own timeouts, both strictly
	// shorter than the generation timeout.
	saveTimeout time.Duration
	markTimeout time.Duration
}

func NewService(st store.Store, gen *generator.Generator, pool *staticpool.Pool) *Service {
	saveTimeout := 10 * time.Second
	markTimeout := 5 * time.Second
	if gt := gen.Timeout(); gt > 0 {
		if saveTimeout >= gt {
			saveTimeout = gt / 2
		}
		if markTimeout >= saveTimeout {
			markTimeout = saveTimeout / 2
		}
	}
	return &Service{
		store:       st,
		generator:   gen,
		pool:        pool,
		saveTimeout: saveTimeout,
		markTimeout: markTimeout,
	}
}

// resolution is the per-request state threaded through the strategy chain.
type resolution struct {
	req    models.BatchRequest
	cached []models.Exercise
}

// strategy yields a terminal result or nil to fall through.
type strategy struct {
	name string
	run  func(ctx context.Context, st *resolution) ([]models.Exercise, models.BatchSource)
}

// Resolve serves one batch request. The response is never empty for a
// requested level present in the static pool; order is always randomized,
// and served items with real ids are marked used asynchronously.
func (s *Service) Resolve(ctx context.Context, req models.BatchRequest) (*models.BatchResponse, error) {
	normalize(&req)
	st := &resolution{req: req}

	chain := []strategy{
		{"cache-probe", s.cacheProbe},
		{"generate", s.generate},
		{"cache-fallback", s.cacheFallback},
		{"static-fallback", s.staticFallback},
	}

	var result []models.Exercise
	var source models.BatchSource
	for _, step := range chain {
		result, source = step.run(ctx, st)
		if result != nil {
			log.Printf("[resolve] session=%s step=%s returned %d", req.SessionID, step.name, len(result))
			break
		}
	}

	// Randomized order prevents predictable sequencing regardless of which
	// step terminated the chain.
	rand.Shuffle(len(result), func(i, j int) { result[i], result[j] = result[j], result[i] })

	s.markUsedAsync(result, req.SessionID, req.CallerIdentity)

	return &models.BatchResponse{
		Exercises:     result,
		ReturnedCount: len(result),
		Source:        source,
		SessionID:     req.SessionID,
	}, nil
}

// ── Strategy chain steps ────────────────────────────────

// cacheProbe queries the catalogue with headroom for shuffling. It is only
// terminal in assisted-review mode, which must never see fresh generation.
func (s *Service) cacheProbe(ctx context.Context, st *resolution) ([]models.Exercise, models.BatchSource) {
	cached, err := s.store.GetExercises(ctx, store.Filter{
		Levels:         st.req.Levels,
		Topics:         st.req.Topics,
		ExcludedIDs:    st.req.ExcludedIDs,
		CallerIdentity: st.req.CallerIdentity,
		Limit:          2 * st.req.Count,
	})
	if err != nil {
		log.Printf("WARN: cache probe failed: %v", err)
	}
	st.cached = cached

	if st.req.Mode == models.ModeAssistedReview && len(cached) > 0 {
		return trim(cached, st.req.Count), models.SourceCache
	}
	return nil, ""
}

// generate invokes the adapter, validates the untrusted output, and
// persists survivors without blocking the response.
func (s *Service) generate(ctx context.Context, st *resolution) ([]models.Exercise, models.BatchSource) {
	if st.req.Mode == models.ModeAssistedReview {
		return nil, ""
	}
	if !s.generator.Enabled() {
		return nil, ""
	}

	raw, err := s.generator.GenerateExercises(ctx, generator.PromptRequest{
		Levels:             st.req.Levels,
		Topics:             st.req.Topics,
		ExcludedVocabulary: st.req.ExcludedVocabulary,
		Count:              st.req.Count,
	})
	if err != nil {
		return nil, ""
	}

	survivors, err := generator.ParseExercises(raw, st.req.Levels, st.req.Topics)
	if err != nil {
		log.Printf("WARN: rejected generated batch: %v", err)
		return nil, ""
	}
	if len(survivors) == 0 {
		return nil, ""
	}

	// The served slice is shuffled after this returns; persistence iterates
	// its own copy so the detached goroutine never sees those swaps.
	toSave := make([]models.Exercise, len(survivors))
	copy(toSave, survivors)
	s.persistAsync(toSave)

	return trim(survivors, st.req.Count), models.SourceGenerated
}

func (s *Service) cacheFallback(ctx context.Context, st *resolution) ([]models.Exercise, models.BatchSource) {
	if len(st.cached) == 0 {
		return nil, ""
	}
	return trim(st.cached, st.req.Count), models.SourceCache
}

// staticFallback is the absolute last resort: static pool by level only,
// then the hardcoded minimal exercise so the response is never empty.
func (s *Service) staticFallback(ctx context.Context, st *resolution) ([]models.Exercise, models.BatchSource) {
	fromPool := s.pool.ByLevels(st.req.Levels, st.req.Count)
	if len(fromPool) == 0 {
		return []models.Exercise{staticpool.MinimalFallback()}, models.SourceFallback
	}
	return fromPool, models.SourceFallback
}

// ── Side effects ────────────────────────────────────────

// persistAsync saves generated survivors on a detached context so the
// catalogue grows even when the caller abandons the request. Failures are
// logged and swallowed.
func (s *Service) persistAsync(exercises []models.Exercise) {
	if !s.store.IsAvailable() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		defer cancel()
		saved, err := s.store.SaveBatch(ctx, exercises)
		if err != nil {
			log.Printf("WARN: persist generated batch: %v", err)
			return
		}
		log.Printf("[persist] saved %d of %d generated exercises", len(saved), len(exercises))
	}()
}

// markUsedAsync records exposure for every served item that has a real id.
// Marking must never block or fail the caller-visible response.
func (s *Service) markUsedAsync(exercises []models.Exercise, sessionID, identity string) {
	for _, ex := range exercises {
		if ex.ID <= 0 {
			continue
		}
		go func(id int64) {
			ctx, cancel := context.WithTimeout(context.Background(), s.markTimeout)
			defer cancel()
			if err := s.store.MarkUsed(ctx, id, sessionID, identity, false, nil); err != nil {
				log.Printf("WARN: mark used %d: %v", id, err)
			}
		}(ex.ID)
	}
}

// RecordAttempt appends a usage record for an answered exercise. Failures
// are logged, never surfaced.
func (s *Service) RecordAttempt(ctx context.Context, exerciseID int64, req models.AttemptRequest, identity string) {
	ctx, cancel := context.WithTimeout(ctx, s.markTimeout)
	defer cancel()
	if err := s.store.MarkUsed(ctx, exerciseID, req.SessionID, identity, req.Correct, req.LatencyMs); err != nil {
		log.Printf("WARN: record attempt %d: %v", exerciseID, err)
	}
}

// SeedStaticPool migrates the static catalogue into the persistent store.
// The natural-key upsert makes repeated boots converge.
func (s *Service) SeedStaticPool(ctx context.Context) {
	if !s.store.IsAvailable() {
		return
	}
	saved, err := s.store.SaveBatch(ctx, s.pool.All())
	if err != nil {
		log.Printf("WARN: seed static pool: %v", err)
		return
	}
	log.Printf("[seed] static pool v%d: %d exercises upserted", staticpool.Version, len(saved))
}

// ── Helpers ─────────────────────────────────────────────

func normalize(req *models.BatchRequest) {
	if len(req.Levels) == 0 {
		req.Levels = []models.Level{models.LevelA1}
	}
	if req.Count <= 0 {
		req.Count = defaultCount
	}
	if req.Count > maxCount {
		req.Count = maxCount
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.Mode == "" {
		req.Mode = models.ModeImmediate
	}
}

func trim(exercises []models.Exercise, n int) []models.Exercise {
	if len(exercises) > n {
		return exercises[:n]
	}
	return exercises
}
