package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geoworld/geoexplorer/internal/geo"
	"github.com/geoworld/geoexplorer/internal/leaderboard"
)

var (
	// ErrPhase rejects an event that the current phase does not accept.
	ErrPhase = errors.New("not allowed in the current phase")

	// ErrNoGuess rejects a lock with no coordinate placed.
	ErrNoGuess = errors.New("no guess placed")

	// ErrInvalidName rejects a high-score name that is not exactly three
	// characters after trimming.
	ErrInvalidName = errors.New("name must be exactly 3 characters")

	// ErrCoordinate rejects a guess outside valid latitude/longitude ranges.
	ErrCoordinate = errors.New("coordinate out of range")
)

// Finder asynchronously yields count playable locations. Retrying individual
// coverage misses is the finder's concern; the engine only sees the final
// batch or a failure.
type Finder interface {
	Find(ctx context.Context, count int) ([]Location, error)
}

// Game is one game session. Every exported method applies a single user or
// timer event atomically under the session mutex, the Go rendition of the
// original's run-to-completion event model.
type Game struct {
	mu      sync.Mutex
	logger  *slog.Logger
	finder  Finder
	board   *leaderboard.Board
	publish func(Event)

	phase      Phase
	mode       Mode
	difficulty Difficulty
	loadErr    string

	locations []Location
	round     int

	guess     *geo.Coordinate // transient selection on the pick map
	results   []RoundResult   // single-player slot

	activePlayer int
	timeLeft     int
	p1Guess      *geo.Coordinate
	p2Guess      *geo.Coordinate
	p1Results    []RoundResult
	p2Results    []RoundResult

	queue []PendingEntry

	gen         int // location fetch generation; stale completions are dropped
	cancelFetch context.CancelFunc
	timerStop   chan struct{}
	tickEvery   time.Duration
}

// New creates a session at the start screen. publish may be nil; when set it
// receives an event after every state change and countdown tick.
func New(finder Finder, board *leaderboard.Board, logger *slog.Logger, publish func(Event)) *Game {
	return &Game{
		logger:    logger,
		finder:    finder,
		board:     board,
		publish:   publish,
		phase:     PhaseStart,
		tickEvery: time.Second,
	}
}

// Play moves from the start screen to mode selection.
func (g *Game) Play() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseStart {
		return g.phaseErr("play")
	}
	g.loadErr = ""
	g.phase = PhaseModeSelect
	g.publishState()
	return nil
}

// OpenLeaderboard shows the score table from the start screen.
func (g *Game) OpenLeaderboard() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseStart {
		return g.phaseErr("open leaderboard")
	}
	g.phase = PhaseLeaderboard
	g.publishState()
	return nil
}

// Back steps one screen backwards in the pre-game menus.
func (g *Game) Back() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.phase {
	case PhaseModeSelect:
		g.phase = PhaseStart
	case PhaseDifficultySelect:
		g.phase = PhaseModeSelect
	default:
		return g.phaseErr("go back")
	}
	g.publishState()
	return nil
}

// SelectMode picks single-player (starts immediately at beginner difficulty)
// or multiplayer (moves on to difficulty selection).
func (g *Game) SelectMode(mode Mode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseModeSelect {
		return g.phaseErr("select a mode")
	}
	if mode == ModeSingle {
		g.beginRunLocked(ModeSingle, DifficultyBeginner)
	} else {
		g.mode = ModeMultiplayer
		g.phase = PhaseDifficultySelect
	}
	g.publishState()
	return nil
}

// SelectDifficulty starts a multiplayer run at the chosen difficulty.
func (g *Game) SelectDifficulty(d Difficulty) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseDifficultySelect {
		return g.phaseErr("select a difficulty")
	}
	g.beginRunLocked(ModeMultiplayer, d)
	g.publishState()
	return nil
}

// beginRunLocked enters loading and kicks off the asynchronous location
// fetch. The generation counter ties the fetch to this run: a completion for
// an abandoned run finds a newer generation and is discarded.
func (g *Game) beginRunLocked(mode Mode, d Difficulty) {
	g.stopTimerLocked()
	g.cancelFetchLocked()

	g.mode = mode
	g.difficulty = d
	g.loadErr = ""
	g.phase = PhaseLoading

	g.gen++
	gen := g.gen
	ctx, cancel := context.WithCancel(context.Background())
	g.cancelFetch = cancel

	go func() {
		locs, err := g.finder.Find(ctx, TotalRounds)
		g.applyLocations(gen, locs, err)
	}()
}

func (g *Game) applyLocations(gen int, locs []Location, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseLoading || gen != g.gen {
		return // the session moved on, drop the stale result
	}

	if err == nil && len(locs) != TotalRounds {
		err = fmt.Errorf("finder returned %d locations, want %d", len(locs), TotalRounds)
	}
	if err != nil {
		g.logger.Error("location discovery failed", "error", err)
		g.loadErr = "could not find playable locations"
		g.phase = PhaseStart
		g.publishState()
		return
	}

	g.locations = locs
	g.round = 0
	g.results = nil
	g.p1Results = nil
	g.p2Results = nil
	g.resetRoundLocked()
	g.phase = PhasePlaying
	if g.mode == ModeMultiplayer {
		g.startTimerLocked()
	}
	g.publishState()
}

func (g *Game) resetRoundLocked() {
	g.guess = nil
	g.p1Guess = nil
	g.p2Guess = nil
	g.activePlayer = 1
	g.timeLeft = RoundSeconds
}

// PickGuess records the current map selection. Only the last pick before a
// lock counts.
func (g *Game) PickGuess(c geo.Coordinate) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhasePlaying {
		return g.phaseErr("place a guess")
	}
	if !c.Valid() {
		return ErrCoordinate
	}
	g.guess = &c
	g.publishState()
	return nil
}

// LockGuess commits the current selection. Single-player finalizes the round
// directly. In multiplayer, player 1's lock hands the map to player 2;
// player 2's lock finalizes without waiting for the timer.
func (g *Game) LockGuess() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhasePlaying {
		return g.phaseErr("lock a guess")
	}
	if g.guess == nil {
		return ErrNoGuess
	}

	if g.mode == ModeMultiplayer {
		if g.activePlayer == 1 {
			g.p1Guess = g.guess
			g.guess = nil
			g.activePlayer = 2
			g.publishState()
			return nil
		}
		g.p2Guess = g.guess
		g.guess = nil
	}

	g.finalizeRoundLocked()
	g.publishState()
	return nil
}

// finalizeRoundLocked scores the current round from whatever guesses are
// pending and moves to round-end. A missing guess scores zero with an
// infinite distance.
func (g *Game) finalizeRoundLocked() {
	g.stopTimerLocked()

	actual := g.locations[g.round].Coord
	if g.mode == ModeMultiplayer {
		g.p1Results = append(g.p1Results, scoreGuess(g.p1Guess, actual))
		g.p2Results = append(g.p2Results, scoreGuess(g.p2Guess, actual))
	} else {
		g.results = append(g.results, scoreGuess(g.guess, actual))
	}
	g.phase = PhaseRoundEnd
}

// NextRound advances past the round-end screen: to the next round, or to the
// finished screen after the last one.
func (g *Game) NextRound() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseRoundEnd {
		return g.phaseErr("advance the round")
	}

	if g.round+1 < TotalRounds {
		g.round++
		g.resetRoundLocked()
		g.phase = PhasePlaying
		if g.mode == ModeMultiplayer {
			g.startTimerLocked()
		}
	} else {
		g.phase = PhaseFinished
	}
	g.publishState()
	return nil
}

// Continue leaves the finished screen: qualifying slots queue up for name
// entry, highest score first; with no qualifiers the leaderboard shows
// directly.
func (g *Game) Continue() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseFinished {
		return g.phaseErr("continue")
	}

	var candidates []PendingEntry
	if g.mode == ModeMultiplayer {
		candidates = []PendingEntry{
			{Player: 1, Score: sumPoints(g.p1Results)},
			{Player: 2, Score: sumPoints(g.p2Results)},
		}
	} else {
		candidates = []PendingEntry{{Player: 0, Score: sumPoints(g.results)}}
	}

	g.queue = nil
	for _, c := range candidates {
		if g.board.IsHighScore(c.Score) {
			g.queue = append(g.queue, c)
		}
	}
	sort.SliceStable(g.queue, func(i, j int) bool {
		return g.queue[i].Score > g.queue[j].Score
	})

	if len(g.queue) > 0 {
		g.phase = PhaseHighScoreEntry
	} else {
		g.phase = PhaseLeaderboard
	}
	g.publishState()
	return nil
}

// SubmitName admits the queue head under the given initials. Blank or
// wrongly-sized names are rejected without advancing the queue. When the
// queue empties, the leaderboard shows.
func (g *Game) SubmitName(ctx context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseHighScoreEntry {
		return g.phaseErr("submit a name")
	}

	name = strings.ToUpper(strings.TrimSpace(name))
	if len([]rune(name)) != 3 {
		return ErrInvalidName
	}

	head := g.queue[0]
	g.board.Admit(ctx, name, head.Score)
	g.queue = g.queue[1:]
	if len(g.queue) == 0 {
		g.phase = PhaseLeaderboard
	}
	g.publishState()
	return nil
}

// MainMenu abandons whatever is in progress — a pending location fetch, a
// running countdown, queued high-score entries — and returns to the start
// screen. Valid from every phase.
func (g *Game) MainMenu() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopTimerLocked()
	g.cancelFetchLocked()
	g.gen++ // any in-flight fetch completion is now stale

	g.phase = PhaseStart
	g.mode = ""
	g.difficulty = ""
	g.loadErr = ""
	g.locations = nil
	g.round = 0
	g.results = nil
	g.p1Results = nil
	g.p2Results = nil
	g.queue = nil
	g.resetRoundLocked()
	g.publishState()
	return nil
}

// Shutdown tears down the session's timer and any in-flight fetch.
func (g *Game) Shutdown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopTimerLocked()
	g.cancelFetchLocked()
	g.gen++
}

// Snapshot returns a copy of the observable session state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Phase:       g.phase,
		Mode:        g.mode,
		Difficulty:  g.difficulty,
		LoadError:   g.loadErr,
		TotalRounds: TotalRounds,
		Results:     append([]RoundResult(nil), g.results...),
		P1Results:   append([]RoundResult(nil), g.p1Results...),
		P2Results:   append([]RoundResult(nil), g.p2Results...),
		TotalScore:  sumPoints(g.results),
		P1Total:     sumPoints(g.p1Results),
		P2Total:     sumPoints(g.p2Results),
	}
	if g.difficulty != "" {
		c := g.difficulty.Controls()
		s.Controls = &c
	}

	switch g.phase {
	case PhasePlaying:
		loc := g.locations[g.round]
		s.Round = g.round + 1 // displayed as "round N of 5"
		s.Location = &loc
		s.Guess = g.guess
		if g.mode == ModeMultiplayer {
			s.ActivePlayer = g.activePlayer
			s.TimeLeft = g.timeLeft
		}
	case PhaseRoundEnd:
		loc := g.locations[g.round]
		s.Round = g.round + 1
		s.Location = &loc
		if g.mode == ModeMultiplayer {
			s.P1Guess = g.p1Guess
			s.P2Guess = g.p2Guess
		} else {
			s.Guess = g.guess
		}
	case PhaseHighScoreEntry:
		head := g.queue[0]
		s.PendingEntry = &head
	}
	return s
}

// startTimerLocked arms a fresh countdown for the current round, replacing
// any prior one. The stop channel doubles as the timer's identity so a
// superseded goroutine can never tick a later round.
func (g *Game) startTimerLocked() {
	g.stopTimerLocked()
	stop := make(chan struct{})
	g.timerStop = stop

	ticker := time.NewTicker(g.tickEvery)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				g.tick(stop)
			}
		}
	}()
}

func (g *Game) stopTimerLocked() {
	if g.timerStop != nil {
		close(g.timerStop)
		g.timerStop = nil
	}
}

func (g *Game) cancelFetchLocked() {
	if g.cancelFetch != nil {
		g.cancelFetch()
		g.cancelFetch = nil
	}
}

// tick is one second of the round countdown. At zero the round is
// force-finalized with whatever guesses are pending.
func (g *Game) tick(owner chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timerStop != owner || g.phase != PhasePlaying {
		return
	}

	g.timeLeft--
	if g.timeLeft <= 0 {
		g.finalizeRoundLocked()
		g.publishState()
		return
	}
	g.publishLocked("tick")
}

func (g *Game) publishState() {
	g.publishLocked("state")
}

func (g *Game) publishLocked(typ string) {
	if g.publish == nil {
		return
	}
	ev := Event{
		Type:  typ,
		Phase: g.phase,
	}
	if g.phase == PhasePlaying || g.phase == PhaseRoundEnd {
		ev.Round = g.round + 1
	}
	if g.phase == PhasePlaying && g.mode == ModeMultiplayer {
		ev.ActivePlayer = g.activePlayer
		ev.TimeLeft = g.timeLeft
	}
	g.publish(ev)
}

func (g *Game) phaseErr(action string) error {
	return fmt.Errorf("cannot %s while %s: %w", action, g.phase, ErrPhase)
}

func scoreGuess(guess *geo.Coordinate, actual geo.Coordinate) RoundResult {
	if guess == nil {
		return RoundResult{Distance: infDistance, Points: 0}
	}
	d := geo.DistanceKm(*guess, actual)
	return RoundResult{Distance: d, Points: geo.ScoreFromDistance(d)}
}

func sumPoints(results []RoundResult) int {
	total := 0
	for _, r := range results {
		total += r.Points
	}
	return total
}
