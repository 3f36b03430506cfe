// File path: internal/sqlite/queries.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sacred-sikkim/monastery360/internal/chat"
	"github.com/sacred-sikkim/monastery360/internal/monastery"
)

var (
	errNilStore = errors.New("sqlite store not initialised")

	// ErrNotFound is returned for point lookups that match no row.
	ErrNotFound = errors.New("not found")
)

// SeedMonasteries inserts the provided records when the corpus table is
// empty. Returns the number of records inserted.
func (s *Store) SeedMonasteries(ctx context.Context, records []monastery.Monastery) (int, error) {
	if s == nil || s.db == nil {
		return 0, errNilStore
	}
	count, err := s.CountMonasteries(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 || len(records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	const stmt = `INSERT INTO monasteries
                (id, name, location, era, description, history, significance, latitude, longitude, images)
                VALUES (:id, :name, :location, :era, :description, :history, :significance, :latitude, :longitude, :images)`
	for _, rec := range records {
		if _, err := tx.NamedExecContext(ctx, stmt, rowFromMonastery(rec)); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("insert monastery %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(records), nil
}

// CountMonasteries reports the corpus size.
func (s *Store) CountMonasteries(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, errNilStore
	}
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM monasteries`); err != nil {
		return 0, fmt.Errorf("count monasteries: %w", err)
	}
	return count, nil
}

// ListMonasteries returns the full corpus ordered by name.
func (s *Store) ListMonasteries(ctx context.Context) ([]monastery.Monastery, error) {
	if s == nil || s.db == nil {
		return nil, errNilStore
	}
	var rows []monasteryRow
	const stmt = `SELECT id, name, location, era, description, history, significance, latitude, longitude, COALESCE(images, '') AS images
                FROM monasteries ORDER BY name`
	if err := s.db.SelectContext(ctx, &rows, stmt); err != nil {
		return nil, fmt.Errorf("list monasteries: %w", err)
	}
	out := make([]monastery.Monastery, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toMonastery())
	}
	return out, nil
}

// GetMonastery returns a single record by identifier.
func (s *Store) GetMonastery(ctx context.Context, id string) (monastery.Monastery, error) {
	if s == nil || s.db == nil {
		return monastery.Monastery{}, errNilStore
	}
	var row monasteryRow
	const stmt = `SELECT id, name, location, era, description, history, significance, latitude, longitude, COALESCE(images, '') AS images
                FROM monasteries WHERE id = ?`
	if err := s.db.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return monastery.Monastery{}, ErrNotFound
		}
		return monastery.Monastery{}, fmt.Errorf("get monastery: %w", err)
	}
	return row.toMonastery(), nil
}

// CreateConversation starts a new chat conversation and returns its id.
func (s *Store) CreateConversation(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errNilStore
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO conversations DEFAULT VALUES`)
	if err != nil {
		return 0, fmt.Errorf("create conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("conversation id: %w", err)
	}
	return id, nil
}

// AppendMessage records one conversation turn.
func (s *Store) AppendMessage(ctx context.Context, conversationID int64, role, content string) error {
	if s == nil || s.db == nil {
		return errNilStore
	}
	var exists int
	if err := s.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM conversations WHERE id = ?`, conversationID); err != nil {
		return fmt.Errorf("check conversation: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("conversation %d: %w", conversationID, ErrNotFound)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, role, content) VALUES (?, ?, ?)`,
		conversationID, role, content)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// RecentMessages returns the trailing window of turns for a conversation,
// oldest first. Turns older than the window are dropped, not archived.
func (s *Store) RecentMessages(ctx context.Context, conversationID int64, limit int) ([]chat.Turn, error) {
	if s == nil || s.db == nil {
		return nil, errNilStore
	}
	if limit <= 0 {
		limit = 8
	}
	var rows []messageRow
	const stmt = `SELECT id, role, content, created_at FROM (
                        SELECT id, role, content, created_at FROM messages
                        WHERE conversation_id = ? ORDER BY id DESC LIMIT ?
                ) ORDER BY id ASC`
	if err := s.db.SelectContext(ctx, &rows, stmt, conversationID, limit); err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	turns := make([]chat.Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, chat.Turn{Role: row.Role, Content: row.Content, Timestamp: row.CreatedAt})
	}
	return turns, nil
}
