package generator

import (
	"fmt"
	"strings"

	"github.com/lingua-prep/backend/internal/models"
)

// PromptRequest carries the constraints one generation call is built from.
type PromptRequest struct {
	Levels             []models.Level
	Topics             []string
	ExcludedVocabulary []string
	Count              int
}

var levelGuidance = map[models.Level]string{
	models.LevelA1: "basic present tense, everyday nouns, simple word order; vocabulary limited to the ~500 most common words",
	models.LevelA2: "past tense (Perfekt), modal verbs, separable verbs, simple subordinate clauses",
	models.LevelB1: "Präteritum, reflexive verbs, two-way prepositions, relative clauses",
	models.LevelB2: "passive voice, Konjunktiv II, participle constructions, nuanced connectors",
	models.LevelC1: "advanced subjunctive, nominalization, idiomatic collocations, formal register",
	models.LevelC2: "near-native idiom, stylistic variation, rare collocations, rhetorical structures",
}

// defaultTopics is the slice offered when a request leaves topics open.
var defaultTopics = []string{
	"daily routine", "food and drink", "travel", "work and career",
	"free time", "family and friends", "health", "environment",
}

func SystemPrompt() string {
	return `You are an expert language teacher creating fill-in-the-gap exercises for learners of German.

Respond with ONLY a JSON object, no surrounding prose, matching exactly this schema:

{
  "exercises": [
    {
      "sentence": "sentence containing exactly one gap written as ___",
      "correct_answer": "the word or phrase that fills the gap",
      "alternate_answers": ["other accepted spellings or forms"],
      "topic": "one of the requested topics",
      "level": "one of A1, A2, B1, B2, C1, C2",
      "distractors": ["three plausible but wrong choices"],
      "explanations": {"en": "why the answer is correct, in English", "de": "same explanation in German"},
      "hint": {"text": "short grammar hint", "example": "optional example sentence"},
      "difficulty_score": 2.5
    }
  ]
}

Rules:
- Every sentence must contain exactly one gap marker ___
- Distractors must be grammatically plausible for the gap but clearly wrong
- The level field must match the level the exercise was requested for
- difficulty_score is a float from 1.0 (trivial) to 5.0 (very hard) within the level`
}

func BuildUserPrompt(req PromptRequest) string {
	var b strings.Builder

	count := req.Count
	if count <= 0 {
		count = 5
	}
	fmt.Fprintf(&b, "Create %d fill-in-the-gap exercises.\n\n", count)

	b.WriteString("Target levels:\n")
	for _, level := range req.Levels {
		if guidance, ok := levelGuidance[level]; ok {
			fmt.Fprintf(&b, "- %s: %s\n", level, guidance)
		} else {
			fmt.Fprintf(&b, "- %s\n", level)
		}
	}

	topics := req.Topics
	if len(topics) == 0 {
		topics = defaultTopics
	}
	fmt.Fprintf(&b, "\nTopics to draw from: %s\n", strings.Join(topics, ", "))

	if len(req.ExcludedVocabulary) > 0 {
		fmt.Fprintf(&b, "\nDo NOT use any of these words as the gapped answer (the learner has already mastered them): %s\n",
			strings.Join(req.ExcludedVocabulary, ", "))
	}

	b.WriteString("\nSpread the exercises across the requested levels and topics. Vary sentence structure between exercises.")
	return b.String()
}
