// File path: internal/chat/router.go
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sacred-sikkim/monastery360/internal/common"
	"github.com/sacred-sikkim/monastery360/internal/llm"
	"github.com/sacred-sikkim/monastery360/internal/retriever"
)

const defaultSimilarityThreshold = 0.3

// followUpWords mark queries that likely continue the previous topic rather
// than name a new one.
var followUpWords = []string{
	"near", "nearby", "similar", "other", "others", "also", "too", "more",
	"them", "those", "there", "that", "else",
}

// Router decides whether a query should be answered from retrieval results or
// from conversational context alone. The primary strategy delegates the
// decision to the generation model with a structured prompt; parsing and call
// failures degrade to keyword sniffing and then to a fixed heuristic.
type Router struct {
	provider  llm.Provider
	threshold float64
}

func NewRouter(provider llm.Provider, threshold float64) *Router {
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}
	return &Router{provider: provider, threshold: threshold}
}

type routeAnalysis struct {
	UseRAG             bool   `json:"useRAG"`
	Reasoning          string `json:"reasoning"`
	ContextualResponse string `json:"contextualResponse"`
}

// Decide runs the routing strategy chain for one query.
func (r *Router) Decide(ctx context.Context, query string, history []Turn, matches []retriever.Match) Decision {
	logger := common.Logger()
	if r.provider == nil {
		return r.heuristic(query, matches)
	}
	raw, err := r.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are a routing analyst. Reply with a single JSON object and nothing else."},
		{Role: "user", Content: analysisPrompt(query, history, matches)},
	})
	if err != nil {
		logger.Warn("router: analysis call failed, using heuristic", "error", err)
		return r.heuristic(query, matches)
	}
	if analysis, ok := extractAnalysis(raw); ok {
		return Decision{
			UseRetrieval:       analysis.UseRAG,
			Reasoning:          analysis.Reasoning,
			ContextualResponse: strings.TrimSpace(analysis.ContextualResponse),
			Source:             "model",
		}
	}
	if decision, ok := sniffKeywords(raw); ok {
		logger.Debug("router: JSON extraction failed, keyword sniff applied")
		decision.Source = "keywords"
		return decision
	}
	logger.Warn("router: analysis response unusable, using heuristic")
	return r.heuristic(query, matches)
}

// heuristic is the terminal fallback: prefer retrieval unless the query looks
// like a follow-up, except that a strong top similarity always wins.
func (r *Router) heuristic(query string, matches []retriever.Match) Decision {
	followUp := looksLikeFollowUp(query)
	top := retriever.TopScore(matches)
	use := !followUp || top > r.threshold
	reason := "no follow-up cue in query"
	if followUp {
		reason = "follow-up cue in query"
		if top > r.threshold {
			reason = fmt.Sprintf("top similarity %.2f above threshold", top)
		}
	}
	return Decision{UseRetrieval: use, Reasoning: reason, Source: "heuristic"}
}

func looksLikeFollowUp(query string) bool {
	for _, token := range strings.Fields(strings.ToLower(query)) {
		token = strings.Trim(token, ".,!?;:")
		for _, word := range followUpWords {
			if token == word {
				return true
			}
		}
	}
	return false
}

func analysisPrompt(query string, history []Turn, matches []retriever.Match) string {
	var b strings.Builder
	b.WriteString("Decide whether the visitor's question should be answered from the retrieved monastery records (useRAG=true) or from the conversation context alone (useRAG=false).\n")
	if conversation := formatHistory(history); conversation != "" {
		b.WriteString("\nConversation:\n")
		b.WriteString(conversation)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n\nRetrieved candidates:\n")
	if len(matches) == 0 {
		b.WriteString("(none)\n")
	}
	for _, m := range matches {
		fmt.Fprintf(&b, "- %s (%s), similarity %.2f\n", m.Monastery.Name, m.Monastery.Location, m.Score)
	}
	b.WriteString("\nReply with JSON: {\"useRAG\": bool, \"reasoning\": string, \"contextualResponse\": string (only when useRAG is false)}")
	return b.String()
}

// extractAnalysis pulls the first balanced JSON object out of free-form model
// output and unmarshals it.
func extractAnalysis(raw string) (routeAnalysis, bool) {
	var analysis routeAnalysis
	obj, ok := firstJSONObject(raw)
	if !ok {
		return analysis, false
	}
	if err := json.Unmarshal([]byte(obj), &analysis); err != nil {
		return analysis, false
	}
	return analysis, true
}

func firstJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// sniffKeywords scrapes a non-JSON analysis for an explicit verdict.
func sniffKeywords(raw string) (Decision, bool) {
	lower := strings.ToLower(raw)
	idx := strings.Index(lower, "userag")
	if idx < 0 {
		return Decision{}, false
	}
	rest := lower[idx:]
	trueIdx := strings.Index(rest, "true")
	falseIdx := strings.Index(rest, "false")
	switch {
	case trueIdx >= 0 && (falseIdx < 0 || trueIdx < falseIdx):
		return Decision{UseRetrieval: true}, true
	case falseIdx >= 0:
		return Decision{UseRetrieval: false}, true
	}
	return Decision{}, false
}
