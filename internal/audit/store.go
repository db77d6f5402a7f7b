package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/0genblik/discord-bot/internal/db"
)

// Store persists handled-interaction records.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new entry. If entry.ID is empty a UUID is generated.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interaction_log (id, interaction_type, command, outcome, detail)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.InteractionType,
		entry.Command,
		string(entry.Outcome),
		entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("inserting interaction log entry: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, interaction_type, command, outcome, detail
		FROM interaction_log
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying interaction log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var outcome string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.InteractionType, &e.Command, &outcome, &e.Detail); err != nil {
			return nil, fmt.Errorf("scanning interaction log entry: %w", err)
		}
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
