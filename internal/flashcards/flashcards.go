// Package flashcards generates front/back study cards for a subject.
package flashcards

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/frisoboot/examenbuddy/internal/llm"
	"github.com/frisoboot/examenbuddy/internal/llm/prompts"
	"github.com/frisoboot/examenbuddy/internal/model"
)

// SetSchema constrains flashcard responses to a titled list of cards.
var SetSchema = &llm.Schema{
	Name:        "flashcard-set",
	Description: "Een set flashcards over een onderwerp",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{
				"type":        "string",
				"description": "De titel van de set.",
			},
			"cards": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"front": map[string]any{
							"type":        "string",
							"description": "Het begrip of de vraag op de voorkant.",
						},
						"back": map[string]any{
							"type":        "string",
							"description": "De definitie of het antwoord op de achterkant.",
						},
						"category": map[string]any{
							"type":        "string",
							"description": "Korte categorie, bijv. 'Begrippen' of 'Formules'.",
						},
					},
					"required": []any{"front", "back"},
				},
			},
		},
		"required": []any{"topic", "cards"},
	},
}

// Service generates flashcard sets through the external model.
type Service struct {
	provider llm.Provider
}

// NewService creates a flashcard service.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

// Generate produces a flashcard set for the subject, optionally focused on
// the given topics. Sets are generated fresh on every call and never stored.
func (s *Service) Generate(ctx context.Context, subject model.Subject, profile model.UserProfile, topics string) (*model.FlashcardSet, error) {
	system, err := prompts.SystemInstruction(subject, profile)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:   system,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompts.FlashcardSet(subject, profile, topics)}},
		Schema:   SetSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("generate flashcards for %s: %w", subject.ID, err)
	}

	var set model.FlashcardSet
	if err := json.Unmarshal(resp.Content, &set); err != nil {
		return nil, fmt.Errorf("decode flashcards for %s: %w", subject.ID, err)
	}

	// Drop cards with a blank side; the set must still hold at least one.
	cards := set.Cards[:0]
	for _, card := range set.Cards {
		if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
			continue
		}
		cards = append(cards, card)
	}
	set.Cards = cards
	if len(set.Cards) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("flashcard set has no usable cards")}
	}

	return &set, nil
}
