package llm

// Config holds provider configuration resolved from flags and environment.
type Config struct {
	// Provider selects the backend: "openai", "gemini" or "mock".
	Provider string

	OpenAI OpenAIConfig
	Gemini GeminiConfig
}

// OpenAIConfig configures the OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Optional override for OpenRouter, Ollama and the like.
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey string
	Model  string
}
