// File path: internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sacred-sikkim/monastery360/internal/chat"
	"github.com/sacred-sikkim/monastery360/internal/monastery"
	"github.com/sacred-sikkim/monastery360/internal/retriever"
	"github.com/sacred-sikkim/monastery360/internal/sqlite"
)

type fakeCorpusStore struct {
	records []monastery.Monastery
	turns   []chat.Turn
}

func (f *fakeCorpusStore) ListMonasteries(ctx context.Context) ([]monastery.Monastery, error) {
	return f.records, nil
}

func (f *fakeCorpusStore) GetMonastery(ctx context.Context, id string) (monastery.Monastery, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return monastery.Monastery{}, sqlite.ErrNotFound
}

func (f *fakeCorpusStore) RecentMessages(ctx context.Context, conversationID int64, limit int) ([]chat.Turn, error) {
	return f.turns, nil
}

type fakeChatService struct {
	reply   chat.Reply
	lastMsg string
}

func (f *fakeChatService) Respond(ctx context.Context, conversationID int64, message string) (chat.Reply, error) {
	f.lastMsg = message
	reply := f.reply
	if reply.ConversationID == 0 {
		reply.ConversationID = conversationID
		if reply.ConversationID == 0 {
			reply.ConversationID = 1
		}
	}
	return reply, nil
}

func (f *fakeChatService) Provider() string { return "fake" }

func apiCorpus() []monastery.Monastery {
	return []monastery.Monastery{
		{ID: "rumtek", Name: "Rumtek Monastery", Location: "East Sikkim",
			Description: "Largest monastery in Sikkim."},
		{ID: "enchey", Name: "Enchey Monastery", Location: "Gangtok",
			Description: "Nyingma gompa above Gangtok."},
	}
}

func newTestServer(t *testing.T) (*Server, *fakeChatService, *fakeCorpusStore) {
	t.Helper()
	store := &fakeCorpusStore{records: apiCorpus()}
	svc := &fakeChatService{reply: chat.Reply{Answer: "Rumtek is the largest monastery.", Provider: "fake"}}
	srv, err := NewServer(retriever.New(apiCorpus()), svc, store)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, svc, store
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestChatEndpoint(t *testing.T) {
	srv, svc, _ := newTestServer(t)
	body := strings.NewReader(`{"message": "Tell me about Rumtek"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/chat", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "Rumtek is the largest monastery." {
		t.Fatalf("unexpected answer %q", resp.Answer)
	}
	if resp.ConversationID == 0 {
		t.Fatal("expected a conversation id")
	}
	if svc.lastMsg != "Tell me about Rumtek" {
		t.Fatalf("service received %q", svc.lastMsg)
	}
}

func TestChatEndpointRequiresMessage(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message": "  "}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatEndpointBadJSON(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListMonasteries(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/monasteries", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Monasteries) != 2 {
		t.Fatalf("expected 2 monasteries, got %d", len(resp.Monasteries))
	}
}

func TestGetMonasteryNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/monasteries/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search?q=rumtek&limit=3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].Monastery.ID != "rumtek" {
		t.Fatalf("expected rumtek result, got %+v", resp.Results)
	}
	if resp.Results[0].Tier != retriever.TierExact {
		t.Fatalf("expected exact tier, got %s", resp.Results[0].Tier)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestConversationMessages(t *testing.T) {
	srv, _, store := newTestServer(t)
	store.turns = []chat.Turn{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleAssistant, Content: "hello"},
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/conversations/7/messages", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp messagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConversationID != 7 || len(resp.Messages) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestConversationMessagesBadID(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/conversations/abc/messages", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
