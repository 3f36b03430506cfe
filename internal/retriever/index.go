// File path: internal/retriever/index.go
package retriever

import (
	"sort"
	"strings"

	"github.com/sacred-sikkim/monastery360/internal/monastery"
)

// Tier identifies which retrieval stage produced a match.
type Tier string

const (
	TierExact    Tier = "exact"
	TierSemantic Tier = "semantic"
	TierFallback Tier = "fallback"
)

const (
	defaultLimit    = 5
	similarityFloor = 0.01
)

// popularNames seeds the fallback tier so a non-empty index never returns an
// empty result set. Matching is by substring against name or location.
var popularNames = []string{"rumtek", "pemayangtse", "enchey", "tashiding"}

// Match pairs a monastery with the similarity score and tier that retrieved
// it. Exact and fallback matches carry a zero score.
type Match struct {
	Monastery monastery.Monastery `json:"monastery"`
	Score     float64             `json:"score"`
	Tier      Tier                `json:"tier"`
}

type entry struct {
	record monastery.Monastery
	vector []float64
	text   string
}

// Index is an in-memory retrieval index over the monastery corpus. It is
// immutable after construction; call Rebuild with a fresh record set when the
// corpus changes.
type Index struct {
	entries []entry
	popular []string
}

type Option func(*Index)

// WithPopularNames overrides the fallback-tier name list.
func WithPopularNames(names []string) Option {
	return func(idx *Index) {
		if len(names) > 0 {
			idx.popular = names
		}
	}
}

// New builds the index by vectorizing one synthetic text per record.
func New(records []monastery.Monastery, opts ...Option) *Index {
	idx := &Index{popular: popularNames}
	for _, opt := range opts {
		if opt != nil {
			opt(idx)
		}
	}
	idx.rebuild(records)
	return idx
}

// Rebuild discards the current entries and re-indexes the provided records.
// Incremental updates are not supported; the corpus is small enough that a
// wholesale rebuild is cheaper than bookkeeping.
func (idx *Index) Rebuild(records []monastery.Monastery) {
	idx.rebuild(records)
}

func (idx *Index) rebuild(records []monastery.Monastery) {
	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		text := rec.SearchText()
		entries = append(entries, entry{record: rec, vector: Vectorize(text), text: text})
	}
	idx.entries = entries
}

// Len reports the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Records returns the indexed monastery records in index order.
func (idx *Index) Records() []monastery.Monastery {
	out := make([]monastery.Monastery, 0, len(idx.entries))
	for _, e := range idx.entries {
		out = append(out, e.record)
	}
	return out
}

// Lookup resolves a query against the index through three ordered tiers:
// exact substring matching, cosine similarity, then the popularity fallback.
// The result is never empty while the index holds at least one record.
func (idx *Index) Lookup(query string, limit int) []Match {
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(idx.entries) == 0 {
		return nil
	}
	if matches := idx.exactMatches(query, limit); len(matches) > 0 {
		return matches
	}
	if matches := idx.semanticMatches(query, limit); len(matches) > 0 {
		return matches
	}
	return idx.fallbackMatches(limit)
}

func (idx *Index) exactMatches(query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var matches []Match
	for _, e := range idx.entries {
		name := strings.ToLower(e.record.Name)
		location := strings.ToLower(e.record.Location)
		hit := strings.Contains(name, q) || strings.Contains(location, q)
		if !hit {
			if first := e.record.FirstNameWord(); first != "" && strings.Contains(q, first) {
				hit = true
			}
		}
		if !hit {
			continue
		}
		matches = append(matches, Match{Monastery: e.record, Tier: TierExact})
		if len(matches) >= limit {
			break
		}
	}
	return matches
}

func (idx *Index) semanticMatches(query string, limit int) []Match {
	qv := Vectorize(query)
	matches := make([]Match, 0, len(idx.entries))
	for _, e := range idx.entries {
		score := Cosine(qv, e.vector)
		if score <= similarityFloor {
			continue
		}
		matches = append(matches, Match{Monastery: e.record, Score: score, Tier: TierSemantic})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func (idx *Index) fallbackMatches(limit int) []Match {
	var matches []Match
	for _, e := range idx.entries {
		name := strings.ToLower(e.record.Name)
		location := strings.ToLower(e.record.Location)
		for _, popular := range idx.popular {
			if strings.Contains(name, popular) || strings.Contains(location, popular) {
				matches = append(matches, Match{Monastery: e.record, Tier: TierFallback})
				break
			}
		}
		if len(matches) >= limit {
			break
		}
	}
	if len(matches) > 0 {
		return matches
	}
	for _, e := range idx.entries {
		matches = append(matches, Match{Monastery: e.record, Tier: TierFallback})
		if len(matches) >= limit {
			break
		}
	}
	return matches
}

// TopScore returns the highest similarity among the matches, or 0 when no
// match carries a semantic score.
func TopScore(matches []Match) float64 {
	var top float64
	for _, m := range matches {
		if m.Score > top {
			top = m.Score
		}
	}
	return top
}
