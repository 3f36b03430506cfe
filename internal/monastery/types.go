// File path: internal/monastery/types.go
package monastery

import "strings"

// Monastery represents a single monastery record from the Sikkim corpus.
// Records are immutable for the lifetime of a chat session; the corpus is
// loaded once and the retrieval index is rebuilt wholesale when it changes.
type Monastery struct {
	ID           string   `json:"id" db:"id"`
	Name         string   `json:"name" db:"name"`
	Location     string   `json:"location" db:"location"`
	Era          string   `json:"era" db:"era"`
	Description  string   `json:"description" db:"description"`
	History      string   `json:"history" db:"history"`
	Significance string   `json:"significance" db:"significance"`
	Latitude     float64  `json:"latitude" db:"latitude"`
	Longitude    float64  `json:"longitude" db:"longitude"`
	Images       []string `json:"images,omitempty" db:"-"`
}

// SearchText concatenates the free-text fields used to build the retrieval
// vector for this record.
func (m Monastery) SearchText() string {
	parts := []string{m.Name, m.Location, m.Description, m.History, m.Significance, m.Era}
	return strings.ToLower(strings.Join(parts, " "))
}

// FirstNameWord returns the leading word of the monastery name, used by the
// exact-match retrieval tier ("rumtek" should hit "Rumtek Monastery").
func (m Monastery) FirstNameWord() string {
	fields := strings.Fields(strings.ToLower(m.Name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
