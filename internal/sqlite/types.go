// File path: internal/sqlite/types.go
package sqlite

import (
	"encoding/json"
	"time"

	"github.com/sacred-sikkim/monastery360/internal/monastery"
)

type monasteryRow struct {
	ID           string  `db:"id"`
	Name         string  `db:"name"`
	Location     string  `db:"location"`
	Era          string  `db:"era"`
	Description  string  `db:"description"`
	History      string  `db:"history"`
	Significance string  `db:"significance"`
	Latitude     float64 `db:"latitude"`
	Longitude    float64 `db:"longitude"`
	Images       string  `db:"images"`
}

type messageRow struct {
	ID        int64     `db:"id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

func (r monasteryRow) toMonastery() monastery.Monastery {
	m := monastery.Monastery{
		ID:           r.ID,
		Name:         r.Name,
		Location:     r.Location,
		Era:          r.Era,
		Description:  r.Description,
		History:      r.History,
		Significance: r.Significance,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
	}
	if r.Images != "" {
		// Bad image JSON is ignored; images are presentation-only.
		_ = json.Unmarshal([]byte(r.Images), &m.Images)
	}
	return m
}

func rowFromMonastery(m monastery.Monastery) monasteryRow {
	row := monasteryRow{
		ID:           m.ID,
		Name:         m.Name,
		Location:     m.Location,
		Era:          m.Era,
		Description:  m.Description,
		History:      m.History,
		Significance: m.Significance,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
	}
	if len(m.Images) > 0 {
		if raw, err := json.Marshal(m.Images); err == nil {
			row.Images = string(raw)
		}
	}
	return row
}
