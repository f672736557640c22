// Package chat streams free-form tutor conversations. The client owns the
// chat history and replays it on every request; the server holds no chat
// state between calls.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/frisoboot/examenbuddy/internal/llm"
	"github.com/frisoboot/examenbuddy/internal/llm/prompts"
	"github.com/frisoboot/examenbuddy/internal/model"
)

// ErrEmptyMessage is returned when the new message is blank.
var ErrEmptyMessage = errors.New("chat message must not be empty")

// Service streams tutor replies through the external model.
type Service struct {
	provider llm.Provider
}

// NewService creates a chat service.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

// Stream sends the replayed history plus the new message and returns the
// model's reply as a channel of chunks. A mid-stream failure arrives as a
// chunk with Err set after any text already produced; the caller decides how
// to surface it without discarding the partial reply.
func (s *Service) Stream(ctx context.Context, subject model.Subject, profile model.UserProfile, history []model.ChatMessage, message string) (<-chan llm.StreamChunk, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	system, err := prompts.SystemInstruction(subject, profile)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == model.RoleModel {
			role = llm.RoleAssistant
		}
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		messages = append(messages, llm.Message{Role: role, Content: text})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	return s.provider.GenerateStream(ctx, llm.Request{
		System:   system,
		Messages: messages,
	})
}
