package staticpool

import (
	"github.com/lingua-prep/backend/internal/models"
)

// Version identifies the shipped catalogue revision. Bump when the exercise
// set below changes so re-seeded stores pick up the new content.
const Version = 3

// Pool is the fixed, read-only, in-process catalogue keyed by level. It is
// the terminal fallback of the resolution pipeline and the one-time seed for
// the persistent store. C2 is intentionally absent; requests for it exercise
// the minimal-fallback path when the catalogue is empty too.
type Pool struct {
	byLevel map[models.Level][]models.Exercise
}

func NewPool() *Pool {
	return &Pool{byLevel: catalogue}
}

// ByLevels returns up to limit exercises for the requested levels, topics
// ignored. Returned items have id 0 until they are persisted.
func (p *Pool) ByLevels(levels []models.Level, limit int) []models.Exercise {
	if limit <= 0 {
		limit = 20
	}
	var out []models.Exercise
	for _, level := range levels {
		for _, ex := range p.byLevel[level] {
			if len(out) >= limit {
				return out
			}
			out = append(out, ex)
		}
	}
	return out
}

// All returns the full catalogue for the one-time startup seed.
func (p *Pool) All() []models.Exercise {
	var out []models.Exercise
	for _, level := range models.AllLevels {
		out = append(out, p.byLevel[level]...)
	}
	return out
}

// MinimalFallback is the hardcoded last-resort exercise, returned so that a
// request for a supported level never yields an empty response.
func MinimalFallback() models.Exercise {
	return models.Exercise{
		Sentence:      "Ich ___ ein Student.",
		CorrectAnswer: "bin",
		Topic:         "introductions",
		Level:         models.LevelA1,
		Distractors:   []string{"bist", "ist", "sind"},
		Explanations: map[string]string{
			"en": "The verb 'sein' conjugates to 'bin' with 'ich'.",
			"de": "Das Verb 'sein' wird mit 'ich' zu 'bin'.",
		},
		DifficultyScore: 1.0,
	}
}

var catalogue = map[models.Level][]models.Exercise{
	models.LevelA1: {
		{
			Sentence:      "Wir ___ heute Abend Pizza.",
			CorrectAnswer: "essen",
			Topic:         "food and drink",
			Level:         models.LevelA1,
			Distractors:   []string{"esse", "isst", "esst"},
			Explanations: map[string]string{
				"en": "With 'wir' the verb takes the plural form 'essen'.",
				"de": "Mit 'wir' steht das Verb im Plural: 'essen'.",
			},
			Hint:            &models.Hint{Text: "First person plural", Example: "Wir trinken Kaffee."},
			DifficultyScore: 1.2,
		},
		{
			Sentence:      "Sie ___ jeden Tag zur Arbeit.",
			CorrectAnswer: "fährt",
			Topic:         "daily routine",
			Level:         models.LevelA1,
			Distractors:   []string{"fahre", "fährst", "fahren"},
			Explanations: map[string]string{
				"en": "'fahren' is a stem-changing verb: sie fährt.",
				"de": "'fahren' ist ein Verb mit Vokalwechsel: sie fährt.",
			},
			DifficultyScore: 1.8,
		},
		{
			Sentence:      "Das ist ___ Buch.",
			CorrectAnswer: "mein",
			Topic:         "family and friends",
			Level:         models.LevelA1,
			Distractors:   []string{"meine", "meinen", "meiner"},
			Explanations: map[string]string{
				"en": "'Buch' is neuter, so the possessive takes no ending in the nominative.",
				"de": "'Buch' ist Neutrum, deshalb hat das Possessivpronomen im Nominativ keine Endung.",
			},
			DifficultyScore: 1.5,
		},
		{
			Sentence:         "___ du gern Musik?",
			CorrectAnswer:    "Hörst",
			AlternateAnswers: []string{"hörst"},
			Topic:            "free time",
			Level:            models.LevelA1,
			Distractors:      []string{"Höre", "Hört", "Hören"},
			Explanations: map[string]string{
				"en": "Second person singular: du hörst.",
				"de": "Zweite Person Singular: du hörst.",
			},
			DifficultyScore: 1.3,
		},
	},
	models.LevelA2: {
		{
			Sentence:      "Gestern ___ wir einen Ausflug gemacht.",
			CorrectAnswer: "haben",
			Topic:         "travel",
			Level:         models.LevelA2,
			Distractors:   []string{"sind", "hatten", "waren"},
			Explanations: map[string]string{
				"en": "'machen' forms the Perfekt with 'haben'.",
				"de": "'machen' bildet das Perfekt mit 'haben'.",
			},
			Hint:            &models.Hint{Text: "Perfekt with haben or sein?"},
			DifficultyScore: 2.2,
		},
		{
			Sentence:      "Ich ___ morgen früh aufstehen.",
			CorrectAnswer: "muss",
			Topic:         "daily routine",
			Level:         models.LevelA2,
			Distractors:   []string{"musst", "müsst", "müssen"},
			Explanations: map[string]string{
				"en": "Modal verb 'müssen', first person singular: ich muss.",
				"de": "Modalverb 'müssen', erste Person Singular: ich muss.",
			},
			DifficultyScore: 2.0,
		},
		{
			Sentence:      "Er ruft seine Mutter jeden Sonntag ___.",
			CorrectAnswer: "an",
			Topic:         "family and friends",
			Level:         models.LevelA2,
			Distractors:   []string{"auf", "aus", "ab"},
			Explanations: map[string]string{
				"en": "Separable verb 'anrufen': the prefix moves to the end.",
				"de": "Trennbares Verb 'anrufen': das Präfix steht am Ende.",
			},
			DifficultyScore: 2.4,
		},
		{
			Sentence:      "Wenn es regnet, ___ wir zu Hause.",
			CorrectAnswer: "bleiben",
			Topic:         "free time",
			Level:         models.LevelA2,
			Distractors:   []string{"bleibt", "bleibe", "blieben"},
			Explanations: map[string]string{
				"en": "After the wenn-clause the main clause verb comes first: bleiben wir.",
				"de": "Nach dem Wenn-Satz steht das Verb im Hauptsatz an erster Stelle: bleiben wir.",
			},
			DifficultyScore: 2.6,
		},
	},
	models.LevelB1: {
		{
			Sentence:      "Der Film, ___ wir gestern gesehen haben, war langweilig.",
			CorrectAnswer: "den",
			Topic:         "free time",
			Level:         models.LevelB1,
			Distractors:   []string{"der", "dem", "das"},
			Explanations: map[string]string{
				"en": "Relative pronoun in the accusative masculine: den.",
				"de": "Relativpronomen im Akkusativ Maskulinum: den.",
			},
			Hint:            &models.Hint{Text: "Which case does 'sehen' govern?"},
			DifficultyScore: 3.1,
		},
		{
			Sentence:      "Ich interessiere ___ für moderne Kunst.",
			CorrectAnswer: "mich",
			Topic:         "free time",
			Level:         models.LevelB1,
			Distractors:   []string{"mir", "sich", "uns"},
			Explanations: map[string]string{
				"en": "'sich interessieren für' takes the accusative reflexive pronoun.",
				"de": "'sich interessieren für' verlangt das Reflexivpronomen im Akkusativ.",
			},
			DifficultyScore: 2.9,
		},
		{
			Sentence:      "Als Kind ___ sie jeden Sommer bei ihren Großeltern.",
			CorrectAnswer: "verbrachte",
			Topic:         "family and friends",
			Level:         models.LevelB1,
			Distractors:   []string{"verbringt", "verbracht", "verbringen"},
			Explanations: map[string]string{
				"en": "'als' with a past habitual action calls for the Präteritum.",
				"de": "'als' mit einer wiederholten Handlung in der Vergangenheit verlangt das Präteritum.",
			},
			DifficultyScore: 3.4,
		},
	},
	models.LevelB2: {
		{
			Sentence:      "Die Brücke ___ vor zwei Jahren renoviert.",
			CorrectAnswer: "wurde",
			Topic:         "environment",
			Level:         models.LevelB2,
			Distractors:   []string{"war", "ist", "hat"},
			Explanations: map[string]string{
				"en": "Vorgangspassiv in the Präteritum: wurde renoviert.",
				"de": "Vorgangspassiv im Präteritum: wurde renoviert.",
			},
			DifficultyScore: 3.6,
		},
		{
			Sentence:      "An deiner Stelle ___ ich das Angebot annehmen.",
			CorrectAnswer: "würde",
			Topic:         "work and career",
			Level:         models.LevelB2,
			Distractors:   []string{"werde", "wurde", "würden"},
			Explanations: map[string]string{
				"en": "Hypothetical advice uses Konjunktiv II: ich würde.",
				"de": "Ein hypothetischer Ratschlag steht im Konjunktiv II: ich würde.",
			},
			Hint:            &models.Hint{Text: "Konjunktiv II", Example: "Ich würde weniger arbeiten."},
			DifficultyScore: 3.8,
		},
		{
			Sentence:      "___ der steigenden Preise kaufen viele weiterhin Bio-Produkte.",
			CorrectAnswer: "Trotz",
			Topic:         "environment",
			Level:         models.LevelB2,
			Distractors:   []string{"Wegen", "Während", "Statt"},
			Explanations: map[string]string{
				"en": "'trotz' (despite) with the genitive expresses concession.",
				"de": "'trotz' mit Genitiv drückt einen Gegensatz aus.",
			},
			DifficultyScore: 4.0,
		},
	},
	models.LevelC1: {
		{
			Sentence:      "Er behauptete, er ___ von dem Plan nichts gewusst.",
			CorrectAnswer: "habe",
			Topic:         "work and career",
			Level:         models.LevelC1,
			Distractors:   []string{"hat", "hätte", "haben"},
			Explanations: map[string]string{
				"en": "Indirect speech takes Konjunktiv I: er habe gewusst.",
				"de": "Die indirekte Rede steht im Konjunktiv I: er habe gewusst.",
			},
			DifficultyScore: 4.3,
		},
		{
			Sentence:      "Die ___ der neuen Verordnung stößt auf breiten Widerstand.",
			CorrectAnswer: "Umsetzung",
			Topic:         "environment",
			Level:         models.LevelC1,
			Distractors:   []string{"Umsetzen", "Einsetzung", "Versetzung"},
			Explanations: map[string]string{
				"en": "Nominalization of 'umsetzen' (to implement): die Umsetzung.",
				"de": "Nominalisierung von 'umsetzen': die Umsetzung.",
			},
			DifficultyScore: 4.6,
		},
	},
}
