package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for the external model.
// Structured calls go through Generate; the tutor chat uses GenerateStream.
type Provider interface {
	// Generate sends a prompt to the model and returns a structured response.
	// When the request carries a Schema the provider uses its native
	// structured-output mechanism and the response Content is JSON validated
	// against that schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// GenerateStream sends a prompt and returns a channel of incremental
	// text chunks. The channel is closed when the stream ends; a chunk with
	// a non-nil Err terminates the stream.
	GenerateStream(ctx context.Context, req Request) (<-chan StreamChunk, error)

	// ModelID returns the model identifier this provider is configured for.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system instruction. Sets the model's persona and rules.
	System string

	// Messages is the conversation history, oldest first.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When nil the
	// response Content is the raw text.
	Schema *Schema

	// Temperature controls randomness. Zero means provider default.
	Temperature float64
}

// Message is a single turn in the conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema (schema name for OpenAI-style APIs).
	// Kebab-case, e.g. "practice-turn".
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output for a structured call.
type Response struct {
	// Content is the generated output. When a Schema was provided this is
	// the validated JSON document.
	Content json.RawMessage

	// Model is the actual model that served the request.
	Model string
}

// StreamChunk is one increment of a streamed response.
type StreamChunk struct {
	Text string
	Err  error
}
