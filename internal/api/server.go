// File path: internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/sacred-sikkim/monastery360/internal/chat"
	"github.com/sacred-sikkim/monastery360/internal/common"
	"github.com/sacred-sikkim/monastery360/internal/monastery"
	"github.com/sacred-sikkim/monastery360/internal/retriever"
)

// CorpusStore is the persistence surface the API reads from.
type CorpusStore interface {
	ListMonasteries(ctx context.Context) ([]monastery.Monastery, error)
	GetMonastery(ctx context.Context, id string) (monastery.Monastery, error)
	RecentMessages(ctx context.Context, conversationID int64, limit int) ([]chat.Turn, error)
}

// ChatService runs the retrieval-augmented chat pipeline.
type ChatService interface {
	Respond(ctx context.Context, conversationID int64, message string) (chat.Reply, error)
	Provider() string
}

type Server struct {
	router  chi.Router
	index   *retriever.Index
	store   CorpusStore
	chatSvc ChatService
}

func NewServer(index *retriever.Index, chatSvc ChatService, store CorpusStore) (*Server, error) {
	logger := common.Logger()
	if index == nil {
		return nil, fmt.Errorf("retrieval index required")
	}
	if chatSvc == nil {
		return nil, fmt.Errorf("chat service required")
	}
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	srv := &Server{
		router:  chi.NewRouter(),
		index:   index,
		store:   store,
		chatSvc: chatSvc,
	}
	srv.routes()
	logger.Info("api: server ready", "indexed", index.Len(), "provider", chatSvc.Provider())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Get("/v1/monasteries", s.handleListMonasteries)
	s.router.Get("/v1/monasteries/{id}", s.handleGetMonastery)
	s.router.Get("/v1/search", s.handleSearch)
	s.router.Post("/v1/chat", s.handleChat)
	s.router.Get("/v1/conversations/{id}/messages", s.handleConversationMessages)
	s.router.Get("/v1/logs", s.handleLogs)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
