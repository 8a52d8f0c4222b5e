package ai

import "context"

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string
	Content string
}

// ChatConfig holds configuration for chat completions
type ChatConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// JSONOutput asks the model to emit a raw JSON document
	JSONOutput bool
}

// ChatProvider defines the interface for text-to-text completions
type ChatProvider interface {
	// ChatCompletion sends a conversation to the LLM and returns the text response
	ChatCompletion(ctx context.Context, messages []ChatMessage, config ChatConfig) (string, error)
}

// Embedder defines the interface for turning text into vectors
type Embedder interface {
	// EmbedTexts returns one embedding per input text, in order
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
