// File path: internal/chat/service.go
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sacred-sikkim/monastery360/internal/common"
	"github.com/sacred-sikkim/monastery360/internal/llm"
	"github.com/sacred-sikkim/monastery360/internal/monastery"
	"github.com/sacred-sikkim/monastery360/internal/retriever"
)

// apologyMessage is the user-facing text for any generation failure. Errors
// never propagate past the service boundary; the chat flow stays usable.
const apologyMessage = "I'm sorry, I ran into a problem answering that. Please ask again in a moment."

// Store persists conversations and their turns.
type Store interface {
	CreateConversation(ctx context.Context) (int64, error)
	AppendMessage(ctx context.Context, conversationID int64, role, content string) error
	RecentMessages(ctx context.Context, conversationID int64, limit int) ([]Turn, error)
}

// Config controls the chat pipeline's windows and thresholds.
type Config struct {
	HistoryWindow       int
	RetrievalLimit      int
	SimilarityThreshold float64
	CacheTTL            time.Duration
	CacheSize           int
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() Config {
	return Config{
		HistoryWindow:       8,
		RetrievalLimit:      3,
		SimilarityThreshold: defaultSimilarityThreshold,
		CacheTTL:            5 * time.Minute,
		CacheSize:           50,
	}
}

// Service owns the chat pipeline: retrieval lookup, relevance routing, prompt
// construction, generation, response caching, and turn persistence. It is
// constructed by the composition root; there is no package-level state.
type Service struct {
	cfg      Config
	index    *retriever.Index
	provider llm.Provider
	router   *Router
	cache    *responseCache
	store    Store
}

func NewService(index *retriever.Index, provider llm.Provider, store Store, cfg Config) (*Service, error) {
	if index == nil {
		return nil, fmt.Errorf("retrieval index required")
	}
	if store == nil {
		return nil, fmt.Errorf("conversation store required")
	}
	defaults := DefaultConfig()
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = defaults.HistoryWindow
	}
	if cfg.RetrievalLimit <= 0 {
		cfg.RetrievalLimit = defaults.RetrievalLimit
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaults.CacheSize
	}
	return &Service{
		cfg:      cfg,
		index:    index,
		provider: provider,
		router:   NewRouter(provider, cfg.SimilarityThreshold),
		cache:    newResponseCache(cfg.CacheTTL, cfg.CacheSize),
		store:    store,
	}, nil
}

// Reset rebuilds the retrieval index from a fresh corpus and drops the
// response cache. Used when the underlying entity set changes.
func (s *Service) Reset(records []monastery.Monastery) {
	s.index.Rebuild(records)
	s.cache.purge()
}

// Provider reports the active generation backend name.
func (s *Service) Provider() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.Name()
}

// Respond runs the full pipeline for one user message. A conversationID of
// zero starts a new conversation. Store failures are returned; generation
// failures are absorbed into the apology message.
func (s *Service) Respond(ctx context.Context, conversationID int64, message string) (Reply, error) {
	logger := common.Logger()
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, fmt.Errorf("message required")
	}
	if conversationID == 0 {
		id, err := s.store.CreateConversation(ctx)
		if err != nil {
			return Reply{}, fmt.Errorf("create conversation: %w", err)
		}
		conversationID = id
	}
	history, err := s.store.RecentMessages(ctx, conversationID, s.cfg.HistoryWindow)
	if err != nil {
		return Reply{}, fmt.Errorf("load history: %w", err)
	}
	if err := s.store.AppendMessage(ctx, conversationID, RoleUser, message); err != nil {
		return Reply{}, fmt.Errorf("persist user turn: %w", err)
	}

	// Retrieval always runs; the router decides whether its results are used.
	matches := s.index.Lookup(message, s.cfg.RetrievalLimit)

	key := cacheKey(message, history)
	if answer, ok := s.cache.get(key); ok {
		logger.Debug("chat: cache hit", "conversation", conversationID)
		if err := s.store.AppendMessage(ctx, conversationID, RoleAssistant, answer); err != nil {
			return Reply{}, fmt.Errorf("persist assistant turn: %w", err)
		}
		return Reply{
			ConversationID: conversationID,
			Answer:         answer,
			Provider:       s.Provider(),
			Matches:        matches,
			Cached:         true,
		}, nil
	}

	decision := s.router.Decide(ctx, message, history, matches)
	logger.Info("chat: routed", "conversation", conversationID,
		"use_retrieval", decision.UseRetrieval, "source", decision.Source)

	answer, generated := s.generate(ctx, message, history, matches, decision)
	if generated {
		s.cache.put(key, answer)
	}
	if err := s.store.AppendMessage(ctx, conversationID, RoleAssistant, answer); err != nil {
		return Reply{}, fmt.Errorf("persist assistant turn: %w", err)
	}
	reply := Reply{
		ConversationID: conversationID,
		Answer:         answer,
		Provider:       s.Provider(),
		Decision:       decision,
	}
	if decision.UseRetrieval {
		reply.Matches = matches
	}
	return reply, nil
}

// generate produces the answer text for a routed query. The second return
// reports whether the answer is cacheable (failures are not).
func (s *Service) generate(ctx context.Context, message string, history []Turn, matches []retriever.Match, decision Decision) (string, bool) {
	logger := common.Logger()
	if !decision.UseRetrieval && decision.ContextualResponse != "" {
		// The router already produced the contextual answer; a second
		// generation call would only restate it.
		return decision.ContextualResponse, true
	}
	var prompt string
	if decision.UseRetrieval {
		prompt = BuildGroundedPrompt(message, matches, history)
	} else {
		prompt = BuildContextualPrompt(message, history, mentionedNames(history, s.index.Records()))
	}
	if s.provider == nil {
		return llm.NotConfiguredMessage, false
	}
	answer, err := s.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		logger.Error("chat: generation failed", "error", err)
		return apologyMessage, false
	}
	return strings.TrimSpace(answer), true
}
