package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for prompt-completion operations against a
// language model provider. Implementations wrap a single cloud API (Anthropic
// Claude, Google Gemini); each call is one request/response exchange with no
// streaming and no multi-turn state held by the service.
type LLMService interface {
	// Chat generates a completion response based on the conversation history.
	// The messages slice should contain the full context in chronological
	// order, including system prompts, user messages, and previous assistant
	// responses.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - messages: Conversation history in chronological order
	//
	// Returns:
	//   - string: Generated assistant response
	//   - error: Error if the completion call fails
	Chat(ctx context.Context, messages []Message) (string, error)

	// Name returns the provider name ("claude" or "gemini") for logging and
	// result attribution.
	Name() string

	// HealthCheck verifies the provider is operational and can handle
	// requests. This performs a lightweight connectivity probe.
	HealthCheck(ctx context.Context) error

	// Close releases resources and performs cleanup operations.
	Close() error
}
