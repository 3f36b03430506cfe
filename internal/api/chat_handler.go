// File path: internal/api/chat_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/sacred-sikkim/monastery360/internal/common"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: chat decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("message required"))
		return
	}
	logger.Info("api: chat request received",
		"conversation", req.ConversationID, "message_length", len(req.Message))
	reply, err := s.chatSvc.Respond(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		// Only store failures reach here; generation failures are absorbed
		// into the reply text by the service.
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		ConversationID: reply.ConversationID,
		Answer:         reply.Answer,
		Provider:       reply.Provider,
		Decision:       reply.Decision,
		Monasteries:    reply.Matches,
		Cached:         reply.Cached,
	})
}

func (s *Server) handleConversationMessages(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid conversation id"))
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit"))
			return
		}
		limit = parsed
	}
	turns, err := s.store.RecentMessages(r.Context(), id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{ConversationID: id, Messages: turns})
}
