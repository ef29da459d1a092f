package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteStore persists the leaderboard in a single table, rewritten as a whole
// on every save so a write is one read-modify-write step.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS leaderboard (
			position INTEGER PRIMARY KEY,
			name     TEXT NOT NULL,
			score    INTEGER NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("creating leaderboard table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, score FROM leaderboard ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Score); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning leaderboard write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM leaderboard`); err != nil {
		return fmt.Errorf("clearing leaderboard: %w", err)
	}
	for i, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO leaderboard (position, name, score) VALUES (?, ?, ?)
		`, i+1, e.Name, e.Score)
		if err != nil {
			return fmt.Errorf("writing leaderboard row %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}
