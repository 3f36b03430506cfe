// File path: internal/api/types.go
package api

import (
	"github.com/sacred-sikkim/monastery360/internal/chat"
	"github.com/sacred-sikkim/monastery360/internal/monastery"
	"github.com/sacred-sikkim/monastery360/internal/retriever"
)

type chatRequest struct {
	ConversationID int64  `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID int64             `json:"conversation_id"`
	Answer         string            `json:"answer"`
	Provider       string            `json:"provider"`
	Decision       chat.Decision     `json:"decision"`
	Monasteries    []retriever.Match `json:"monasteries,omitempty"`
	Cached         bool              `json:"cached"`
}

type searchResponse struct {
	Query   string            `json:"query"`
	Results []retriever.Match `json:"results"`
}

type listResponse struct {
	Monasteries []monastery.Monastery `json:"monasteries"`
}

type messagesResponse struct {
	ConversationID int64       `json:"conversation_id"`
	Messages       []chat.Turn `json:"messages"`
}
