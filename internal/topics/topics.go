// Package topics suggests curriculum topics for a subject and combines the
// student's topic selection into the focus string used by practice prompts.
package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/frisoboot/examenbuddy/internal/llm"
	"github.com/frisoboot/examenbuddy/internal/llm/prompts"
	"github.com/frisoboot/examenbuddy/internal/model"
)

// topicListSchema constrains suggestion responses to a plain list of short
// topic names.
var topicListSchema = &llm.Schema{
	Name:        "topic-list",
	Description: "Een lijst met examenonderwerpen voor een vak",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":        "array",
				"description": "Korte onderwerpnamen, 8 tot 12 stuks.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required": []any{"topics"},
	},
}

// Service fetches topic suggestions from the external model. Suggestions for
// the same subject, level and year are cached for the process lifetime, and
// concurrent requests for the same key share a single model call.
type Service struct {
	provider llm.Provider

	mu    sync.RWMutex
	cache map[string][]string
	group singleflight.Group
}

// NewService creates a topic suggestion service.
func NewService(provider llm.Provider) *Service {
	return &Service{
		provider: provider,
		cache:    make(map[string][]string),
	}
}

// Suggest returns suggested topics for the subject at the student's level and
// year. Suggestions are advisory; callers should treat a failure as an empty
// list rather than an error state.
func (s *Service) Suggest(ctx context.Context, subject model.Subject, profile model.UserProfile) ([]string, error) {
	key := subject.ID + "|" + string(profile.Level) + "|" + fmt.Sprint(profile.Year)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetch(ctx, key, subject, profile)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (s *Service) fetch(ctx context.Context, key string, subject model.Subject, profile model.UserProfile) ([]string, error) {
	resp, err := s.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompts.TopicList(subject, profile)}},
		Schema:   topicListSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch topics for %s: %w", subject.ID, err)
	}

	var payload struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, fmt.Errorf("decode topics for %s: %w", subject.ID, err)
	}

	out := make([]string, 0, len(payload.Topics))
	for _, t := range payload.Topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}

	s.mu.Lock()
	s.cache[key] = out
	s.mu.Unlock()

	slog.Debug("topics cached", "subject", subject.ID, "level", profile.Level, "count", len(out))
	return out, nil
}

// Combine merges selected topics with a free-text entry into the focus string
// for practice prompts. Entries are trimmed, empties dropped and duplicates
// removed while preserving order. An empty result means no topic focus.
func Combine(selected []string, freeform string) string {
	var out []string
	seen := make(map[string]bool)

	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			return
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}

	for _, t := range selected {
		add(t)
	}
	for _, t := range strings.Split(freeform, ",") {
		add(t)
	}

	return strings.Join(out, ", ")
}
