package generator

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/lingua-prep/backend/internal/models"
)

type GeneratedBatch struct {
	Exercises []GeneratedExercise `json:"exercises"`
}

type GeneratedExercise struct {
	Sentence         string            `json:"sentence"`
	CorrectAnswer    string            `json:"correct_answer"`
	AlternateAnswers []string          `json:"alternate_answers"`
	Topic            string            `json:"topic"`
	Level            string            `json:"level"`
	Distractors      []string          `json:"distractors"`
	Explanations     map[string]string `json:"explanations"`
	Hint             *models.Hint      `json:"hint"`
	DifficultyScore  float64           `json:"difficulty_score"`
}

// ParseExercises extracts the generated batch from raw model output and
// returns the candidates that survive validation. A payload that fails to
// parse as a container rejects the whole batch; individually invalid items
// are dropped and the remainder still succeeds, even when it is empty.
// Candidates whose level or topic is outside the requested sets are dropped,
// never coerced.
func ParseExercises(raw string, requestedLevels []models.Level, requestedTopics []string) ([]models.Exercise, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var batch GeneratedBatch
	if err := json.Unmarshal([]byte(payload), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	levelSet := make(map[models.Level]bool, len(requestedLevels))
	for _, l := range requestedLevels {
		levelSet[l] = true
	}
	topicSet := make(map[string]bool, len(requestedTopics))
	for _, t := range requestedTopics {
		topicSet[strings.ToLower(t)] = true
	}

	var survivors []models.Exercise
	for i, ge := range batch.Exercises {
		if err := checkExercise(ge); err != nil {
			log.Printf("WARN: dropped generated exercise %d: %v", i+1, err)
			continue
		}

		level := models.Level(strings.ToUpper(strings.TrimSpace(ge.Level)))
		topic := strings.TrimSpace(ge.Topic)

		// Mismatched metadata means the model ignored instructions; trusting
		// it would corrupt downstream level/topic filtering.
		if !levelSet[level] {
			log.Printf("[drift] exercise %d generated at level %s outside requested set", i+1, level)
			continue
		}
		if len(topicSet) > 0 && !topicSet[strings.ToLower(topic)] {
			log.Printf("[drift] exercise %d generated for topic %q outside requested set", i+1, topic)
			continue
		}

		survivors = append(survivors, models.Exercise{
			Sentence:         strings.TrimSpace(ge.Sentence),
			CorrectAnswer:    strings.TrimSpace(ge.CorrectAnswer),
			AlternateAnswers: ge.AlternateAnswers,
			Topic:            topic,
			Level:            level,
			Distractors:      ge.Distractors,
			Explanations:     ge.Explanations,
			Hint:             ge.Hint,
			DifficultyScore:  ge.DifficultyScore,
		})
	}

	return survivors, nil
}

func checkExercise(ge GeneratedExercise) error {
	sentence := strings.TrimSpace(ge.Sentence)
	if sentence == "" {
		return fmt.Errorf("empty sentence")
	}
	if !strings.Contains(sentence, models.GapMarker) {
		return fmt.Errorf("sentence has no %s gap marker", models.GapMarker)
	}
	if strings.TrimSpace(ge.CorrectAnswer) == "" {
		return fmt.Errorf("missing correct answer")
	}
	level := models.Level(strings.ToUpper(strings.TrimSpace(ge.Level)))
	if !models.ValidLevels[level] {
		return fmt.Errorf("invalid level %q", ge.Level)
	}
	if len(ge.Distractors) == 0 {
		return fmt.Errorf("empty distractor set")
	}
	if strings.TrimSpace(ge.Topic) == "" {
		return fmt.Errorf("empty topic")
	}
	return nil
}

// extractJSON pulls the embedded JSON object out of raw model output,
// tolerating markdown fences and surrounding prose.
func extractJSON(s string) (string, error) {
	s = stripCodeFences(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return s[start : end+1], nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
