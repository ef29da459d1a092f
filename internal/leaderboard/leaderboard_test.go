package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

// memStore is an in-memory Store for exercising admission logic.
type memStore struct {
	entries  []Entry
	loadErr  error
	saveErr  error
	saves    int
}

func (m *memStore) Load(ctx context.Context) ([]Entry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *memStore) Save(ctx context.Context, entries []Entry) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = make([]Entry, len(entries))
	copy(m.entries, entries)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fullBoard(t *testing.T, store *memStore) *Board {
	t.Helper()
	// Ten entries, scores 5000 down to 500.
	for i := 0; i < Size; i++ {
		store.entries = append(store.entries, Entry{
			Name:  fmt.Sprintf("P%02d", i),
			Score: 5000 - i*500,
		})
	}
	return New(context.Background(), store, discardLogger())
}

func TestIsHighScoreWithRoom(t *testing.T) {
	b := New(context.Background(), &memStore{}, discardLogger())

	// Any non-negative score qualifies while the board has room, including 0.
	if !b.IsHighScore(0) {
		t.Error("score 0 should qualify on an empty board")
	}
	if !b.IsHighScore(12345) {
		t.Error("score 12345 should qualify on an empty board")
	}
}

func TestIsHighScoreFullBoard(t *testing.T) {
	b := fullBoard(t, &memStore{})

	// Lowest entry holds 500. Ties do not qualify.
	if b.IsHighScore(500) {
		t.Error("score equal to the lowest entry should not qualify")
	}
	if !b.IsHighScore(501) {
		t.Error("score 501 should qualify against a lowest entry of 500")
	}
	if b.IsHighScore(499) {
		t.Error("score 499 should not qualify")
	}
}

func TestAdmitEvictsLowest(t *testing.T) {
	store := &memStore{}
	b := fullBoard(t, store)

	b.Admit(context.Background(), "NEW", 501)

	entries := b.Entries()
	if len(entries) != Size {
		t.Fatalf("board has %d entries, want %d", len(entries), Size)
	}
	if entries[Size-1].Name != "NEW" || entries[Size-1].Score != 501 {
		t.Errorf("last entry = %+v, want NEW/501", entries[Size-1])
	}
	for _, e := range entries {
		if e.Score == 500 {
			t.Error("evicted 500 entry still present")
		}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Score > entries[i-1].Score {
			t.Fatalf("board not sorted descending at index %d: %v", i, entries)
		}
	}
	if store.saves != 1 {
		t.Errorf("store saved %d times, want 1", store.saves)
	}
}

func TestAdmitTieBreakKeepsEarlierSubmissionHigher(t *testing.T) {
	b := New(context.Background(), &memStore{}, discardLogger())

	b.Admit(context.Background(), "AAA", 3000)
	b.Admit(context.Background(), "BBB", 3000)
	b.Admit(context.Background(), "CCC", 3000)

	entries := b.Entries()
	want := []string{"AAA", "BBB", "CCC"}
	for i, name := range want {
		if entries[i].Name != name {
			t.Fatalf("entries[%d].Name = %q, want %q (order %v)", i, entries[i].Name, name, entries)
		}
	}
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	store := &memStore{loadErr: errors.New("disk on fire")}
	b := New(context.Background(), store, discardLogger())

	if got := b.Entries(); len(got) != 0 {
		t.Errorf("board should start empty after load failure, got %v", got)
	}
	if !b.IsHighScore(0) {
		t.Error("empty board should accept any score")
	}
}

func TestSaveFailureKeepsInMemoryUpdate(t *testing.T) {
	store := &memStore{saveErr: errors.New("read-only filesystem")}
	b := New(context.Background(), store, discardLogger())

	b.Admit(context.Background(), "AAA", 4000)

	entries := b.Entries()
	if len(entries) != 1 || entries[0].Name != "AAA" {
		t.Errorf("in-memory board = %v, want the admitted entry despite save failure", entries)
	}
}
