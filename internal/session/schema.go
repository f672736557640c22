package session

import (
	"encoding/json"
	"fmt"

	"github.com/frisoboot/examenbuddy/internal/llm"
	"github.com/frisoboot/examenbuddy/internal/model"
)

// PracticeTurnSchema is the JSON schema every practice response must conform
// to: feedback on the previous answer (null on the opening turn) bundled with
// the next question.
var PracticeTurnSchema = &llm.Schema{
	Name:        "practice-turn",
	Description: "Feedback op het vorige antwoord plus de volgende oefenvraag",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback": map[string]any{
				"type":        []any{"object", "null"},
				"description": "Feedback op het vorige antwoord. Null bij de start van de sessie.",
				"properties": map[string]any{
					"isCorrect": map[string]any{
						"type":        "boolean",
						"description": "Of het antwoord grotendeels goed was.",
					},
					"score": map[string]any{
						"type":        "integer",
						"minimum":     0,
						"maximum":     10,
						"description": "Score van 0 tot 10.",
					},
					"explanation": map[string]any{
						"type":        "string",
						"description": "Uitleg waarom het goed of fout is, inclusief tips.",
					},
					"modelAnswer": map[string]any{
						"type":        "string",
						"description": "Het ideale antwoord of de uitwerking.",
					},
				},
				"required": []any{"isCorrect", "score", "explanation", "modelAnswer"},
			},
			"nextQuestion": map[string]any{
				"type":        "object",
				"description": "De volgende oefenvraag.",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "De vraag zelf. Gebruik Markdown voor formules.",
					},
					"topic": map[string]any{
						"type":        "string",
						"description": "Het specifieke onderwerp (bijv. differentieren).",
					},
					"difficulty": map[string]any{
						"type": "string",
						"enum": []any{"makkelijk", "gemiddeld", "moeilijk"},
					},
					"source": map[string]any{
						"type":        "string",
						"description": "Bron van een echte examenvraag, bijv. 'Examen 2022 tijdvak 1'.",
					},
					"hint": map[string]any{
						"type":        "string",
						"description": "Een kleine hint voor als de leerling vastloopt.",
					},
					"attachment": map[string]any{
						"type":        []any{"object", "null"},
						"description": "Optioneel tekstfragment of afbeelding waar de vraag over gaat.",
						"properties": map[string]any{
							"type":    map[string]any{"type": "string", "enum": []any{"text", "image"}},
							"title":   map[string]any{"type": "string"},
							"content": map[string]any{"type": "string"},
						},
						"required": []any{"type", "content"},
					},
				},
				"required": []any{"text", "topic", "difficulty"},
			},
		},
		"required": []any{"nextQuestion"},
	},
}

// decodePracticeTurn validates raw model output against PracticeTurnSchema
// and decodes it. The shape is never trusted without validation.
func decodePracticeTurn(raw json.RawMessage) (*model.PracticeTurn, error) {
	if err := llm.ValidateResponse(PracticeTurnSchema, raw); err != nil {
		return nil, err
	}
	var turn model.PracticeTurn
	if err := json.Unmarshal(raw, &turn); err != nil {
		return nil, fmt.Errorf("decode practice turn: %w", err)
	}
	if turn.NextQuestion.Text == "" {
		return nil, fmt.Errorf("practice turn has an empty question")
	}
	return &turn, nil
}
