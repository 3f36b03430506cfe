// File path: internal/chat/types.go
package chat

import (
	"time"

	"github.com/sacred-sikkim/monastery360/internal/retriever"
)

// Turn is a single conversation turn. Turns are append-only within a session;
// only a bounded trailing window is ever fed back into prompts.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Decision is the relevance router's verdict for one query.
type Decision struct {
	UseRetrieval bool   `json:"use_retrieval"`
	Reasoning    string `json:"reasoning,omitempty"`
	// ContextualResponse carries a ready-made answer when the router judged
	// the query answerable from conversation context alone.
	ContextualResponse string `json:"-"`
	// Source records which strategy produced the decision: "model",
	// "keywords", or "heuristic".
	Source string `json:"source"`
}

// Reply is the chat pipeline's result for one user message.
type Reply struct {
	ConversationID int64             `json:"conversation_id"`
	Answer         string            `json:"answer"`
	Provider       string            `json:"provider"`
	Decision       Decision          `json:"decision"`
	Matches        []retriever.Match `json:"matches,omitempty"`
	Cached         bool              `json:"cached"`
}
