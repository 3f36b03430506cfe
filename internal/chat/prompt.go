// File path: internal/chat/prompt.go
package chat

import (
	"fmt"
	"strings"

	"github.com/sacred-sikkim/monastery360/internal/monastery"
	"github.com/sacred-sikkim/monastery360/internal/retriever"
)

const (
	// groundedBudget bounds the retrieval-grounded prompt. When exceeded the
	// builder falls back to the top two entities with shortened excerpts.
	groundedBudget  = 4000
	shortExcerptLen = 220
)

const systemPrompt = "You are the Monastery360 guide, a knowledgeable and warm assistant for " +
	"travellers exploring the Buddhist monasteries of Sikkim. Answer concisely, " +
	"respect the sacred nature of the sites, and include practical visiting detail " +
	"when it helps."

// BuildGroundedPrompt assembles the retrieval-grounded prompt: one block per
// retrieved monastery, the trailing conversation, and the query, with
// instructions to ground the answer in the supplied records.
func BuildGroundedPrompt(query string, matches []retriever.Match, history []Turn) string {
	var b strings.Builder
	b.WriteString("Use the monastery records below to answer. Ground every factual claim in them; if they do not cover the question, say so.\n\n")
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, entityBlock(m.Monastery, 0))
	}
	body := strings.Join(blocks, "\n")
	if len(body) > groundedBudget && len(matches) > 0 {
		// Keep the best match complete, shorten the runner-up.
		trimmed := []string{entityBlock(matches[0].Monastery, 0)}
		if len(matches) > 1 {
			trimmed = append(trimmed, entityBlock(matches[1].Monastery, shortExcerptLen))
		}
		body = strings.Join(trimmed, "\n")
	}
	b.WriteString(body)
	if conversation := formatHistory(history); conversation != "" {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(conversation)
	}
	b.WriteString("\nVisitor question: ")
	b.WriteString(query)
	return b.String()
}

// BuildContextualPrompt assembles the context-only prompt: the trailing
// conversation, the query, and any monasteries mentioned earlier in the
// session, with instructions to answer as a continuation.
func BuildContextualPrompt(query string, history []Turn, mentioned []string) string {
	var b strings.Builder
	b.WriteString("Continue the conversation below. Answer from the dialogue context; no new reference data is supplied.\n")
	if conversation := formatHistory(history); conversation != "" {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(conversation)
	}
	if len(mentioned) > 0 {
		b.WriteString("\nMonasteries already discussed: ")
		b.WriteString(strings.Join(mentioned, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\nVisitor question: ")
	b.WriteString(query)
	return b.String()
}

func entityBlock(m monastery.Monastery, excerptLen int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n", m.Name)
	fmt.Fprintf(&b, "Location: %s\n", m.Location)
	if m.Era != "" {
		fmt.Fprintf(&b, "Era: %s\n", m.Era)
	}
	writeField(&b, "Description", m.Description, excerptLen)
	writeField(&b, "History", m.History, excerptLen)
	writeField(&b, "Cultural significance", m.Significance, excerptLen)
	if m.Latitude != 0 || m.Longitude != 0 {
		fmt.Fprintf(&b, "Coordinates: %.4f, %.4f\n", m.Latitude, m.Longitude)
	}
	return b.String()
}

func writeField(b *strings.Builder, label, value string, excerptLen int) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if excerptLen > 0 {
		value = excerpt(value, excerptLen)
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func formatHistory(history []Turn) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		label := "Visitor"
		if turn.Role == RoleAssistant {
			label = "Guide"
		}
		lines = append(lines, label+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

// mentionedNames returns the names of corpus monasteries referenced anywhere
// in the trailing history, in corpus order.
func mentionedNames(history []Turn, records []monastery.Monastery) []string {
	if len(history) == 0 {
		return nil
	}
	var joined strings.Builder
	for _, turn := range history {
		joined.WriteString(strings.ToLower(turn.Content))
		joined.WriteString(" ")
	}
	text := joined.String()
	var names []string
	for _, rec := range records {
		first := rec.FirstNameWord()
		if first == "" {
			continue
		}
		if strings.Contains(text, first) {
			names = append(names, rec.Name)
		}
	}
	return names
}
