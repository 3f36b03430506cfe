// File path: internal/chat/service_test.go
package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sacred-sikkim/monastery360/internal/monastery"
	"github.com/sacred-sikkim/monastery360/internal/retriever"
)

type fakeStore struct {
	nextID        int64
	conversations map[int64][]Turn
	failAppend    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{conversations: make(map[int64][]Turn)}
}

func (f *fakeStore) CreateConversation(ctx context.Context) (int64, error) {
	f.nextID++
	f.conversations[f.nextID] = nil
	return f.nextID, nil
}

func (f *fakeStore) AppendMessage(ctx context.Context, conversationID int64, role, content string) error {
	if f.failAppend {
		return errors.New("disk full")
	}
	f.conversations[conversationID] = append(f.conversations[conversationID], Turn{
		Role: role, Content: content, Timestamp: time.Now(),
	})
	return nil
}

func (f *fakeStore) RecentMessages(ctx context.Context, conversationID int64, limit int) ([]Turn, error) {
	turns := f.conversations[conversationID]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func serviceCorpus() []monastery.Monastery {
	return []monastery.Monastery{
		{
			ID: "rumtek", Name: "Rumtek Monastery", Location: "Rumtek, East Sikkim",
			Description: "Largest monastery in Sikkim with a golden stupa.",
			History:     "Rebuilt by the 16th Karmapa.", Significance: "Seat of the Kagyu lineage.",
		},
		{
			ID: "enchey", Name: "Enchey Monastery", Location: "Gangtok, East Sikkim",
			Description: "Small Nyingma gompa above Gangtok.",
			History:     "Built in 1909.", Significance: "Detor cham festival.",
		},
	}
}

func newTestService(t *testing.T, provider *scriptedProvider, store Store) *Service {
	t.Helper()
	svc, err := NewService(retriever.New(serviceCorpus()), provider, store, Config{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRespondGroundedFlow(t *testing.T) {
	provider := &scriptedProvider{script: []scripted{
		{text: `{"useRAG": true, "reasoning": "names a monastery"}`},
		{text: "Rumtek is the seat of the Kagyu lineage."},
	}}
	store := newFakeStore()
	svc := newTestService(t, provider, store)

	reply, err := svc.Respond(context.Background(), 0, "Tell me about Rumtek")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply.ConversationID == 0 {
		t.Fatal("expected a new conversation to be created")
	}
	if !reply.Decision.UseRetrieval {
		t.Fatalf("expected retrieval-grounded decision, got %+v", reply.Decision)
	}
	if len(reply.Matches) == 0 || reply.Matches[0].Monastery.ID != "rumtek" {
		t.Fatalf("expected rumtek match, got %+v", reply.Matches)
	}
	if reply.Matches[0].Tier != retriever.TierExact {
		t.Fatalf("expected exact-tier match, got %s", reply.Matches[0].Tier)
	}
	if reply.Answer != "Rumtek is the seat of the Kagyu lineage." {
		t.Fatalf("unexpected answer %q", reply.Answer)
	}
	// Generation prompt (second call) must carry the entity block.
	genPrompt := provider.seen[1][1].Content
	if !strings.Contains(genPrompt, "Rumtek Monastery") {
		t.Fatalf("grounded prompt missing entity block:\n%s", genPrompt)
	}
	turns := store.conversations[reply.ConversationID]
	if len(turns) != 2 || turns[0].Role != RoleUser || turns[1].Role != RoleAssistant {
		t.Fatalf("expected user+assistant turns persisted, got %+v", turns)
	}
}

func TestRespondContextOnlyFlow(t *testing.T) {
	store := newFakeStore()
	id, _ := store.CreateConversation(context.Background())
	_ = store.AppendMessage(context.Background(), id, RoleUser, "Tell me about Enchey Monastery")
	_ = store.AppendMessage(context.Background(), id, RoleAssistant, "Enchey is a Nyingma gompa above Gangtok.")

	provider := &scriptedProvider{script: []scripted{
		{text: `{"useRAG": false, "reasoning": "follow-up", "contextualResponse": "Enchey, which we discussed, hosts the Detor cham."}`},
	}}
	svc := newTestService(t, provider, store)

	reply, err := svc.Respond(context.Background(), id, "what festivals happen there?")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply.Decision.UseRetrieval {
		t.Fatalf("expected context-only routing, got %+v", reply.Decision)
	}
	if len(reply.Matches) != 0 {
		t.Fatal("context-only reply should not expose retrieval matches")
	}
	if !strings.Contains(reply.Answer, "Enchey") {
		t.Fatalf("contextual answer should reference the discussed monastery, got %q", reply.Answer)
	}
	// The ready-made contextual answer skips the second generation call.
	if provider.calls != 1 {
		t.Fatalf("expected a single provider call, got %d", provider.calls)
	}
}

func TestRespondCachesIdenticalQueries(t *testing.T) {
	provider := &scriptedProvider{script: []scripted{
		{text: `{"useRAG": true, "reasoning": "new topic"}`},
		{text: "Rumtek answer."},
	}}
	store := newFakeStore()
	svc := newTestService(t, provider, store)

	first, err := svc.Respond(context.Background(), 0, "Tell me about Rumtek")
	if err != nil {
		t.Fatalf("first Respond: %v", err)
	}
	callsAfterFirst := provider.calls

	// Same query, fresh conversation: identical recent context, so the
	// cached response is reused without another external call.
	second, err := svc.Respond(context.Background(), 0, "Tell me about Rumtek")
	if err != nil {
		t.Fatalf("second Respond: %v", err)
	}
	if !second.Cached {
		t.Fatal("expected a cache hit")
	}
	if second.Answer != first.Answer {
		t.Fatalf("cached answer differs: %q vs %q", second.Answer, first.Answer)
	}
	if provider.calls != callsAfterFirst {
		t.Fatalf("cache hit still called the provider: %d -> %d", callsAfterFirst, provider.calls)
	}
}

func TestRespondGenerationFailureAbsorbed(t *testing.T) {
	provider := &scriptedProvider{script: []scripted{
		{err: errors.New("network down")},
		{err: errors.New("network down")},
	}}
	store := newFakeStore()
	svc := newTestService(t, provider, store)

	reply, err := svc.Respond(context.Background(), 0, "Tell me about Rumtek")
	if err != nil {
		t.Fatalf("generation failure must not surface as an error, got %v", err)
	}
	if reply.Answer != apologyMessage {
		t.Fatalf("expected apology message, got %q", reply.Answer)
	}
	if reply.Decision.Source != "heuristic" {
		t.Fatalf("expected heuristic routing after analysis failure, got %+v", reply.Decision)
	}
	// Failures are not cached; a retry should attempt generation again.
	if _, ok := svc.cache.get(cacheKey("tell me about rumtek", nil)); ok {
		t.Fatal("apology response must not be cached")
	}
}

func TestRespondEmptyMessage(t *testing.T) {
	svc := newTestService(t, &scriptedProvider{}, newFakeStore())
	if _, err := svc.Respond(context.Background(), 0, "   "); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestRespondStoreFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	store.failAppend = true
	svc := newTestService(t, &scriptedProvider{}, store)
	if _, err := svc.Respond(context.Background(), 0, "hello monastery"); err == nil {
		t.Fatal("expected store failure to surface")
	}
}

func TestResetRebuildsIndexAndDropsCache(t *testing.T) {
	provider := &scriptedProvider{script: []scripted{
		{text: `{"useRAG": true}`},
		{text: "answer"},
	}}
	svc := newTestService(t, provider, newFakeStore())
	if _, err := svc.Respond(context.Background(), 0, "Tell me about Rumtek"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	svc.Reset(serviceCorpus()[:1])
	if svc.index.Len() != 1 {
		t.Fatalf("expected rebuilt index of 1 record, got %d", svc.index.Len())
	}
	if _, ok := svc.cache.get(cacheKey("tell me about rumtek", nil)); ok {
		t.Fatal("reset should purge the response cache")
	}
}
