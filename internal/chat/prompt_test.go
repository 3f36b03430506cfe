// File path: internal/chat/prompt_test.go
package chat

import (
	"strings"
	"testing"

	"github.com/sacred-sikkim/monastery360/internal/monastery"
	"github.com/sacred-sikkim/monastery360/internal/retriever"
)

func matchFor(m monastery.Monastery) retriever.Match {
	return retriever.Match{Monastery: m, Tier: retriever.TierSemantic, Score: 0.5}
}

func TestGroundedPromptIncludesEntityFields(t *testing.T) {
	m := monastery.Monastery{
		Name: "Rumtek Monastery", Location: "East Sikkim", Era: "18th century",
		Description: "Largest monastery in Sikkim.", History: "Rebuilt in 1966.",
		Significance: "Seat of the Karmapa.", Latitude: 27.3057, Longitude: 88.5764,
	}
	prompt := BuildGroundedPrompt("tell me about rumtek", []retriever.Match{matchFor(m)},
		[]Turn{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: "hello"}})
	for _, want := range []string{
		"Rumtek Monastery", "East Sikkim", "18th century",
		"Largest monastery", "Rebuilt in 1966", "Seat of the Karmapa",
		"27.3057", "Visitor question: tell me about rumtek",
		"Visitor: hi", "Guide: hello",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("grounded prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestGroundedPromptBudgetTruncation(t *testing.T) {
	long := strings.Repeat("sacred mountain valley prayer wheel turning slowly ", 80)
	matches := []retriever.Match{
		matchFor(monastery.Monastery{Name: "First Gompa", Location: "North", Description: long}),
		matchFor(monastery.Monastery{Name: "Second Gompa", Location: "South", Description: long}),
		matchFor(monastery.Monastery{Name: "Third Gompa", Location: "East", Description: long}),
	}
	prompt := BuildGroundedPrompt("query", matches, nil)
	if !strings.Contains(prompt, "First Gompa") {
		t.Fatal("best match must always survive truncation")
	}
	if !strings.Contains(prompt, strings.TrimSpace(long)) {
		t.Fatal("best match should keep its complete description")
	}
	if !strings.Contains(prompt, "Second Gompa") {
		t.Fatal("runner-up should survive with a shortened excerpt")
	}
	if !strings.Contains(prompt, "…") {
		t.Fatal("runner-up fields should be excerpted")
	}
	if strings.Contains(prompt, "Third Gompa") {
		t.Fatal("third match should be dropped when over budget")
	}
}

func TestContextualPromptMentionsEarlierEntities(t *testing.T) {
	prompt := BuildContextualPrompt("what about there?",
		[]Turn{{Role: RoleUser, Content: "tell me about enchey"}},
		[]string{"Enchey Monastery"})
	if !strings.Contains(prompt, "Monasteries already discussed: Enchey Monastery") {
		t.Fatalf("contextual prompt missing mentioned entities:\n%s", prompt)
	}
	if !strings.Contains(prompt, "no new reference data") {
		t.Fatalf("contextual prompt missing continuation instruction:\n%s", prompt)
	}
}

func TestMentionedNames(t *testing.T) {
	records := []monastery.Monastery{
		{Name: "Rumtek Monastery"},
		{Name: "Enchey Monastery"},
		{Name: "Dubdi Monastery"},
	}
	history := []Turn{
		{Role: RoleUser, Content: "Tell me about Enchey"},
		{Role: RoleAssistant, Content: "Enchey sits above Gangtok. Rumtek is nearby."},
	}
	got := mentionedNames(history, records)
	if len(got) != 2 {
		t.Fatalf("expected 2 mentioned monasteries, got %v", got)
	}
	if got[0] != "Rumtek Monastery" || got[1] != "Enchey Monastery" {
		t.Fatalf("unexpected mention order: %v", got)
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("short", 10); got != "short" {
		t.Fatalf("short text should pass through, got %q", got)
	}
	got := excerpt(strings.Repeat("a", 50), 10)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) != 11 {
		t.Fatalf("unexpected excerpt %q", got)
	}
}
