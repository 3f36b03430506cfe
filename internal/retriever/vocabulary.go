// File path: internal/retriever/vocabulary.go
package retriever

// vocabulary is the fixed term list every text is projected onto. The terms
// cover monastery types, Buddhist traditions, Sikkimese place names, religious
// figures, and cultural or architectural vocabulary. Vector dimensionality is
// always len(vocabulary); changing the list invalidates every stored vector,
// so the index must be rebuilt wholesale after an edit.
var vocabulary = []string{
	// monastery types and institutions
	"monastery", "gompa", "temple", "shrine", "hermitage", "shedra", "institute",
	// traditions and lineages
	"buddhist", "buddhism", "nyingma", "kagyu", "zurmang", "karmapa", "lineage",
	"tibetan", "tantric", "dharma",
	// place names
	"sikkim", "gangtok", "rumtek", "enchey", "pemayangtse", "tashiding",
	"phodong", "ralang", "dubdi", "lingdum", "ranka", "yuksom", "pelling",
	"ravangla", "dzongu", "himalaya", "himalayan",
	// religious figures
	"lama", "monk", "monks", "rinpoche", "guru", "chogyal", "saint",
	// cultural terms
	"festival", "cham", "dance", "losar", "losoong", "bhumchu", "pilgrimage",
	"prayer", "ritual", "sacred", "relic", "relics", "blessing", "meditation",
	// architecture and artefacts
	"stupa", "chorten", "mural", "murals", "statue", "scripture", "mask",
	"flags", "courtyard", "golden",
	// general travel vocabulary
	"visit", "trek", "mountain", "valley", "river", "lake", "ancient", "oldest",
}

// VocabularySize reports the fixed dimensionality of all feature vectors.
func VocabularySize() int {
	return len(vocabulary)
}
