// File path: internal/retriever/vectorizer.go
package retriever

import (
	"math"
	"strings"
)

const minTokenLength = 3

// Vectorize maps free text onto the fixed vocabulary as a bag-of-words count
// vector. Text containing no vocabulary terms yields the zero vector; callers
// scoring such vectors rely on Cosine treating them as zero similarity.
func Vectorize(text string) []float64 {
	tf := make(map[string]float64)
	for _, term := range tokenize(text) {
		tf[term]++
	}
	vec := make([]float64, len(vocabulary))
	for i, term := range vocabulary {
		vec[i] = tf[term]
	}
	return vec
}

// Cosine returns the cosine similarity of two equal-length vectors. A zero
// magnitude on either side yields 0, never NaN, so results are always safe to
// sort and threshold.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func tokenize(text string) []string {
	text = strings.ToLower(text)
	replacer := strings.NewReplacer(
		".", " ",
		",", " ",
		"!", " ",
		"?", " ",
		"\n", " ",
		"\t", " ",
		":", " ",
		";", " ",
		"-", " ",
		"_", " ",
		"(", " ",
		")", " ",
		"'", " ",
		"\"", " ",
	)
	cleaned := replacer.Replace(text)
	fields := strings.Fields(cleaned)
	out := fields[:0]
	for _, field := range fields {
		if len(field) < minTokenLength {
			continue
		}
		out = append(out, field)
	}
	return out
}
