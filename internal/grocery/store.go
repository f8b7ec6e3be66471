package grocery

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a grocery list store on an existing connection
// and ensures the schema exists.
func NewPostgresStore(db *sqlx.DB) (*PostgresStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS grocery_list_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		name_normalized TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		unit TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'Other',
		is_checked BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE INDEX IF NOT EXISTS idx_grocery_entries_user ON grocery_list_entries (user_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create grocery_list_entries table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// ListEntries returns all entries for a user. Rows with a unit this system
// does not understand are skipped rather than poisoning the aggregation.
func (s *PostgresStore) ListEntries(ctx context.Context, userID string) ([]Entry, error) {
	var rows []Entry
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, user_id, name, name_normalized, amount, unit, category, is_checked FROM grocery_list_entries WHERE user_id = $1 ORDER BY category, name",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list grocery entries: %w", err)
	}

	entries := rows[:0]
	for _, e := range rows {
		if !IsValidUnit(e.Unit) {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// InsertEntry inserts a new entry.
func (s *PostgresStore) InsertEntry(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO grocery_list_entries (id, user_id, name, name_normalized, amount, unit, category, is_checked) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		entry.ID,
		entry.UserID,
		entry.Name,
		entry.NameNormalized,
		entry.Amount,
		entry.Unit,
		entry.Category,
		entry.IsChecked,
	)
	if err != nil {
		return fmt.Errorf("failed to insert grocery entry: %w", err)
	}
	return nil
}

// UpdateEntryAmount sets an entry's aggregated amount.
func (s *PostgresStore) UpdateEntryAmount(ctx context.Context, id string, amount float64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE grocery_list_entries SET amount = $2 WHERE id = $1",
		id, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to update grocery entry: %w", err)
	}
	return nil
}

// SetEntryChecked sets an entry's checked-off state.
func (s *PostgresStore) SetEntryChecked(ctx context.Context, id string, checked bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE grocery_list_entries SET is_checked = $2 WHERE id = $1",
		id, checked,
	)
	if err != nil {
		return fmt.Errorf("failed to update grocery entry: %w", err)
	}
	return nil
}

// DeleteEntries deletes entries by id.
func (s *PostgresStore) DeleteEntries(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM grocery_list_entries WHERE id = ANY($1)",
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to delete grocery entries: %w", err)
	}
	return nil
}
