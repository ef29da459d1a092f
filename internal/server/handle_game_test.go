package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/geoworld/geoexplorer/internal/database"
	"github.com/geoworld/geoexplorer/internal/game"
	"github.com/geoworld/geoexplorer/internal/geo"
	"github.com/geoworld/geoexplorer/internal/leaderboard"
)

// stubFinder returns a fixed location list without network access.
type stubFinder struct {
	locs []game.Location
}

func (f stubFinder) Find(_ context.Context, count int) ([]game.Location, error) {
	if count > len(f.locs) {
		return nil, fmt.Errorf("only %d locations available, want %d", len(f.locs), count)
	}
	return f.locs[:count], nil
}

func testFinder() stubFinder {
	return stubFinder{locs: []game.Location{
		{ID: "l1", Name: "Eiffel Tower", Coord: geo.Coordinate{Lat: 48.8584, Lng: 2.2945}},
		{ID: "l2", Name: "Machu Picchu", Coord: geo.Coordinate{Lat: -13.1631, Lng: -72.5450}},
		{ID: "l3", Name: "Sydney Opera House", Coord: geo.Coordinate{Lat: -33.8568, Lng: 151.2153}},
		{ID: "l4", Name: "Table Mountain", Coord: geo.Coordinate{Lat: -33.9628, Lng: 18.4098}},
		{ID: "l5", Name: "Golden Gate Bridge", Coord: geo.Coordinate{Lat: 37.8199, Lng: -122.4783}},
	}}
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := leaderboard.NewSQLiteStore(ctx, db)
	if err != nil {
		t.Fatalf("init leaderboard store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	board := leaderboard.New(ctx, store, logger)
	broker := NewBroker()
	finder := testFinder()

	sessions := NewRegistry(func(token string) *game.Game {
		return game.New(finder, board, logger, func(ev game.Event) {
			broker.Publish(token, ev)
		})
	})
	t.Cleanup(func() { sessions.Close() })

	r := chi.NewRouter()
	addRoutes(r, logger, db, board, sessions, broker, "")
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		buf = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, r http.Handler) string {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/session", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp SessionResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Token == "" {
		t.Fatal("create session: empty token")
	}
	return resp.Token
}

func getState(t *testing.T, r http.Handler, token string) game.Snapshot {
	t.Helper()

	w := doRequest(t, r, http.MethodGet, "/api/game/state", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("state: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var snap game.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	return snap
}

// waitForPhase polls the state endpoint until the location fetch goroutine
// has moved the game to the wanted phase.
func waitForPhase(t *testing.T, r http.Handler, token string, want game.Phase) game.Snapshot {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	var snap game.Snapshot
	for time.Now().Before(deadline) {
		snap = getState(t, r, token)
		if snap.Phase == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("phase = %q, want %q", snap.Phase, want)
	return snap
}

func TestSinglePlayerFlow(t *testing.T) {
	r := newTestRouter(t)
	token := createSession(t, r)

	if snap := getState(t, r, token); snap.Phase != game.PhaseStart {
		t.Fatalf("initial phase = %q, want %q", snap.Phase, game.PhaseStart)
	}

	w := doRequest(t, r, http.MethodPost, "/api/game/play", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("play: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodPost, "/api/game/mode", token, ModeRequest{Mode: "single"})
	if w.Code != http.StatusOK {
		t.Fatalf("mode: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	snap := waitForPhase(t, r, token, game.PhasePlaying)
	if snap.Location == nil {
		t.Fatal("playing phase without a location")
	}
	if snap.Round != 1 {
		t.Errorf("round = %d, want 1", snap.Round)
	}
	if snap.Controls == nil || !snap.Controls.ClickToGo {
		t.Errorf("single player should get beginner controls, got %+v", snap.Controls)
	}

	// Guess every location exactly.
	for round := 1; round <= game.TotalRounds; round++ {
		snap = getState(t, r, token)
		if snap.Round != round {
			t.Fatalf("round = %d, want %d", snap.Round, round)
		}

		loc := snap.Location
		w = doRequest(t, r, http.MethodPost, "/api/game/guess", token,
			GuessRequest{Lat: loc.Coord.Lat, Lng: loc.Coord.Lng})
		if w.Code != http.StatusOK {
			t.Fatalf("guess round %d: expected 200, got %d: %s", round, w.Code, w.Body.String())
		}

		w = doRequest(t, r, http.MethodPost, "/api/game/lock", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("lock round %d: expected 200, got %d: %s", round, w.Code, w.Body.String())
		}

		var after game.Snapshot
		json.NewDecoder(w.Body).Decode(&after)
		if after.Phase != game.PhaseRoundEnd {
			t.Fatalf("after lock: phase = %q, want %q", after.Phase, game.PhaseRoundEnd)
		}

		w = doRequest(t, r, http.MethodPost, "/api/game/next", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("next round %d: expected 200, got %d: %s", round, w.Code, w.Body.String())
		}
	}

	snap = getState(t, r, token)
	if snap.Phase != game.PhaseFinished {
		t.Fatalf("after last round: phase = %q, want %q", snap.Phase, game.PhaseFinished)
	}
	if want := game.TotalRounds * geo.MaxScore; snap.TotalScore != want {
		t.Errorf("total score = %d, want %d", snap.TotalScore, want)
	}

	// A perfect score qualifies for the empty leaderboard.
	w = doRequest(t, r, http.MethodPost, "/api/game/continue", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("continue: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	snap = getState(t, r, token)
	if snap.Phase != game.PhaseHighScoreEntry {
		t.Fatalf("after continue: phase = %q, want %q", snap.Phase, game.PhaseHighScoreEntry)
	}

	w = doRequest(t, r, http.MethodPost, "/api/game/name", token, NameRequest{Name: "ace"})
	if w.Code != http.StatusOK {
		t.Fatalf("name: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	snap = getState(t, r, token)
	if snap.Phase != game.PhaseLeaderboard {
		t.Fatalf("after name: phase = %q, want %q", snap.Phase, game.PhaseLeaderboard)
	}

	w = doRequest(t, r, http.MethodGet, "/api/leaderboard", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d", w.Code)
	}
	var lb LeaderboardResponse
	json.NewDecoder(w.Body).Decode(&lb)
	if len(lb.Entries) != 1 {
		t.Fatalf("leaderboard entries = %d, want 1", len(lb.Entries))
	}
	if lb.Entries[0].Name != "ACE" || lb.Entries[0].Score != game.TotalRounds*geo.MaxScore {
		t.Errorf("entry = %+v, want ACE with perfect score", lb.Entries[0])
	}
}

func TestMultiplayerTurns(t *testing.T) {
	r := newTestRouter(t)
	token := createSession(t, r)

	doRequest(t, r, http.MethodPost, "/api/game/play", token, nil)

	w := doRequest(t, r, http.MethodPost, "/api/game/mode", token, ModeRequest{Mode: "multiplayer"})
	if w.Code != http.StatusOK {
		t.Fatalf("mode: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var snap game.Snapshot
	json.NewDecoder(w.Body).Decode(&snap)
	if snap.Phase != game.PhaseDifficultySelect {
		t.Fatalf("after mode: phase = %q, want %q", snap.Phase, game.PhaseDifficultySelect)
	}

	w = doRequest(t, r, http.MethodPost, "/api/game/difficulty", token, DifficultyRequest{Difficulty: "pro"})
	if w.Code != http.StatusOK {
		t.Fatalf("difficulty: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	snap = waitForPhase(t, r, token, game.PhasePlaying)
	if snap.ActivePlayer != 1 {
		t.Errorf("active player = %d, want 1", snap.ActivePlayer)
	}
	if snap.TimeLeft != game.RoundSeconds {
		t.Errorf("time left = %d, want %d", snap.TimeLeft, game.RoundSeconds)
	}
	if snap.Controls == nil || snap.Controls.ClickToGo || !snap.Controls.Pan {
		t.Errorf("pro controls wrong: %+v", snap.Controls)
	}

	loc := snap.Location

	// Locking without a guess placed is a conflict.
	w = doRequest(t, r, http.MethodPost, "/api/game/lock", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("lock without guess: expected 409, got %d", w.Code)
	}

	doRequest(t, r, http.MethodPost, "/api/game/guess", token,
		GuessRequest{Lat: loc.Coord.Lat, Lng: loc.Coord.Lng})

	w = doRequest(t, r, http.MethodPost, "/api/game/lock", token, nil)
	json.NewDecoder(w.Body).Decode(&snap)
	if snap.Phase != game.PhasePlaying {
		t.Fatalf("after p1 lock: phase = %q, want %q", snap.Phase, game.PhasePlaying)
	}
	if snap.ActivePlayer != 2 {
		t.Errorf("after p1 lock: active player = %d, want 2", snap.ActivePlayer)
	}
	if snap.Guess != nil {
		t.Error("player 2 should start with a clean selection")
	}

	doRequest(t, r, http.MethodPost, "/api/game/guess", token, GuessRequest{Lat: 0, Lng: 0})

	w = doRequest(t, r, http.MethodPost, "/api/game/lock", token, nil)
	json.NewDecoder(w.Body).Decode(&snap)
	if snap.Phase != game.PhaseRoundEnd {
		t.Fatalf("after p2 lock: phase = %q, want %q", snap.Phase, game.PhaseRoundEnd)
	}
	if len(snap.P1Results) != 1 || snap.P1Results[0].Points != geo.MaxScore {
		t.Errorf("p1 results = %+v, want one perfect round", snap.P1Results)
	}
	if len(snap.P2Results) != 1 || snap.P2Results[0].Points >= geo.MaxScore {
		t.Errorf("p2 results = %+v, want a worse score than p1", snap.P2Results)
	}
}

func TestRejectsEventsOutOfPhase(t *testing.T) {
	r := newTestRouter(t)
	token := createSession(t, r)

	// Guessing from the start screen is a conflict, not a bad request.
	w := doRequest(t, r, http.MethodPost, "/api/game/guess", token, GuessRequest{Lat: 1, Lng: 1})
	if w.Code != http.StatusConflict {
		t.Fatalf("guess at start: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodPost, "/api/game/next", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("next at start: expected 409, got %d", w.Code)
	}
}

func TestBadRequests(t *testing.T) {
	r := newTestRouter(t)
	token := createSession(t, r)

	doRequest(t, r, http.MethodPost, "/api/game/play", token, nil)

	w := doRequest(t, r, http.MethodPost, "/api/game/mode", token, ModeRequest{Mode: "co-op"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown mode: expected 400, got %d", w.Code)
	}

	w = doRequest(t, r, http.MethodPost, "/api/game/guess", token, GuessRequest{Lat: 200, Lng: 0})
	if w.Code == http.StatusOK {
		t.Fatal("out-of-range coordinate accepted")
	}
}

func TestUnauthorized(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/game/state", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/game/state", "deadbeef", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bogus token: expected 401, got %d", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/game/events", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("events without token: expected 401, got %d", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/game/events?token=bogus", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("events with bogus token: expected 401, got %d", w.Code)
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/leaderboard", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var lb LeaderboardResponse
	json.NewDecoder(w.Body).Decode(&lb)
	if lb.Entries == nil {
		t.Error("entries should encode as an empty array, not null")
	}
	if len(lb.Entries) != 0 {
		t.Errorf("entries = %+v, want none", lb.Entries)
	}
}
