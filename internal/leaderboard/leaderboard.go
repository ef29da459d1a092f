// Package leaderboard holds the persisted top-score table and decides which
// finished-game scores are admitted to it.
package leaderboard

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Size is the maximum number of persisted entries.
const Size = 10

// Entry is one leaderboard row: three uppercased initials and a total score.
type Entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Store persists the full leaderboard as one blob per write.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// Board is the in-memory leaderboard, loaded once at startup and written back
// after every admitted entry. It stays authoritative for the session even when
// a save fails.
type Board struct {
	mu      sync.Mutex
	store   Store
	logger  *slog.Logger
	entries []Entry
}

// New loads the persisted leaderboard. A load failure is recovered locally:
// the board starts empty and the error is only logged.
func New(ctx context.Context, store Store, logger *slog.Logger) *Board {
	entries, err := store.Load(ctx)
	if err != nil {
		logger.Warn("loading leaderboard failed, starting empty", "error", err)
		entries = nil
	}
	return &Board{
		store:   store,
		logger:  logger,
		entries: entries,
	}
}

// Entries returns a copy of the current table, sorted descending by score.
func (b *Board) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// IsHighScore reports whether score would earn a spot on the board: the board
// has room, or score beats the current lowest entry. Ties with the lowest
// entry do not qualify.
func (b *Board) IsHighScore(score int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.qualifies(score)
}

func (b *Board) qualifies(score int) bool {
	if len(b.entries) < Size {
		return true
	}
	return score > b.entries[len(b.entries)-1].Score
}

// Admit inserts a new entry, re-ranks the table, evicts past the size cap and
// persists the result. A new entry ranks below existing entries with the same
// score (earlier submission ranks higher). A save failure is logged, not
// returned: the in-memory table already reflects the update.
func (b *Board) Admit(ctx context.Context, name string, score int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, Entry{Name: name, Score: score})
	sort.SliceStable(b.entries, func(i, j int) bool {
		return b.entries[i].Score > b.entries[j].Score
	})
	if len(b.entries) > Size {
		b.entries = b.entries[:Size]
	}

	if err := b.store.Save(ctx, b.entries); err != nil {
		b.logger.Error("saving leaderboard failed", "error", err)
	}
}
