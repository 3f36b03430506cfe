// File path: internal/monastery/seed.go
package monastery

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/monasteries.json
var seedData []byte

// SeedCorpus returns the monastery records bundled with the binary. The seed
// keeps the service usable and testable when no managed backend has populated
// the corpus yet.
func SeedCorpus() ([]Monastery, error) {
	var records []Monastery
	if err := json.Unmarshal(seedData, &records); err != nil {
		return nil, fmt.Errorf("decode seed corpus: %w", err)
	}
	return records, nil
}
