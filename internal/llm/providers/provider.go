// File path: internal/llm/providers/provider.go
package providers

import "context"

// Message is a single chat turn handed to a provider.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider abstracts the outbound generative-language API. Implementations
// must honor ctx cancellation so navigating away from the chat aborts the
// in-flight request.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Name() string
}
