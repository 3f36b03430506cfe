// File path: internal/llm/providers/local.go
package providers

import "context"

// NotConfiguredMessage is returned for every generation request when no
// provider credential is configured, so the chat surface stays usable.
const NotConfiguredMessage = "The chat assistant is not configured yet. " +
	"Set GEMINI_API_KEY (or OPENAI_API_KEY) to enable answers about Sikkim's monasteries. " +
	"You can still browse the directory and search in the meantime."

// LocalProvider is the no-credential fallback.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	return NotConfiguredMessage, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}
