package models

import "time"

type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

var ValidLevels = map[Level]bool{
	LevelA1: true,
	LevelA2: true,
	LevelB1: true,
	LevelB2: true,
	LevelC1: true,
	LevelC2: true,
}

// AllLevels lists the six proficiency tiers in ascending order.
var AllLevels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// GapMarker is the blank placeholder every exercise sentence must contain.
const GapMarker = "___"

type Hint struct {
	Text    string `json:"text"`
	Example string `json:"example,omitempty"`
}

// Exercise is a single fill-in-the-gap practice item.
// The natural key (sentence, correct_answer, topic, level) is unique in the
// persistent store; ID is a surrogate and is 0 until the row is saved.
type Exercise struct {
	ID               int64             `json:"id"`
	Sentence         string            `json:"sentence"`
	CorrectAnswer    string            `json:"correct_answer"`
	AlternateAnswers []string          `json:"alternate_answers,omitempty"`
	Topic            string            `json:"topic"`
	Level            Level             `json:"level"`
	Distractors      []string          `json:"distractors"`
	Explanations     map[string]string `json:"explanations,omitempty"`
	Hint             *Hint             `json:"hint,omitempty"`
	DifficultyScore  float64           `json:"difficulty_score"`
	UsageCount       int               `json:"usage_count"`
	CreatedAt        time.Time         `json:"created_at,omitempty"`
	UpdatedAt        time.Time         `json:"updated_at,omitempty"`
}

type Mode string

const (
	ModeAssistedReview Mode = "assisted-review"
	ModeImmediate      Mode = "immediate"
)

// BatchRequest asks the pipeline for a batch of exercises. CallerIdentity is
// resolved from the bearer token by middleware, never from the request body.
type BatchRequest struct {
	Levels             []Level  `json:"levels"`
	Topics             []string `json:"topics"`
	Count              int      `json:"count"`
	SessionID          string   `json:"session_id"`
	Mode               Mode     `json:"mode"`
	ExcludedIDs        []int64  `json:"excluded_ids"`
	ExcludedVocabulary []string `json:"excluded_vocabulary"`
	CallerIdentity     string   `json:"-"`
}

type BatchSource string

const (
	SourceGenerated BatchSource = "generated"
	SourceCache     BatchSource = "cache"
	SourceFallback  BatchSource = "fallback"
)

type BatchResponse struct {
	Exercises     []Exercise  `json:"exercises"`
	ReturnedCount int         `json:"returned_count"`
	Source        BatchSource `json:"source"`
	SessionID     string      `json:"session_id"`
}

// UsageRecord is one append-only serve/attempt event.
type UsageRecord struct {
	ID             int64     `json:"id"`
	ExerciseID     int64     `json:"exercise_id"`
	SessionID      string    `json:"session_id"`
	CallerIdentity *string   `json:"caller_identity,omitempty"`
	Correct        bool      `json:"correct"`
	LatencyMs      *int64    `json:"latency_ms,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AttemptRequest records the outcome of a learner answering an exercise.
type AttemptRequest struct {
	SessionID string `json:"session_id"`
	Correct   bool   `json:"correct"`
	LatencyMs *int64 `json:"latency_ms"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
