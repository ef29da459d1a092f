// Package game implements the round-scoring and game-state-progression
// engine: the phase machine, the two-player turn protocol, the round
// countdown and the high-score admission queue.
package game

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/geoworld/geoexplorer/internal/geo"
)

const (
	// TotalRounds is the number of locations played per game.
	TotalRounds = 5

	// RoundSeconds is the two-player round countdown.
	RoundSeconds = 45
)

// Phase is the single active state of a game session.
type Phase string

const (
	PhaseStart            Phase = "start"
	PhaseModeSelect       Phase = "mode-select"
	PhaseDifficultySelect Phase = "difficulty-select"
	PhaseLoading          Phase = "loading"
	PhasePlaying          Phase = "playing"
	PhaseRoundEnd         Phase = "round-end"
	PhaseFinished         Phase = "finished"
	PhaseHighScoreEntry   Phase = "highscore-entry"
	PhaseLeaderboard      Phase = "leaderboard"
)

type Mode string

const (
	ModeSingle      Mode = "single"
	ModeMultiplayer Mode = "multiplayer"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSingle, ModeMultiplayer:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Difficulty gates which panorama navigation controls the client may enable.
// The engine only carries it; the snapshot derives the control set.
type Difficulty string

const (
	DifficultyBeginner Difficulty = "beginner"
	DifficultyPro      Difficulty = "pro"
	DifficultyElite    Difficulty = "elite"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyBeginner, DifficultyPro, DifficultyElite:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// PanoramaControls is the set of street-view navigation controls permitted
// for a difficulty: beginner gets everything, pro loses click-to-go and
// links, elite gets nothing.
type PanoramaControls struct {
	Pan       bool `json:"pan"`
	Zoom      bool `json:"zoom"`
	ClickToGo bool `json:"clickToGo"`
	Links     bool `json:"links"`
}

func (d Difficulty) Controls() PanoramaControls {
	return PanoramaControls{
		Pan:       d != DifficultyElite,
		Zoom:      d != DifficultyElite,
		ClickToGo: d == DifficultyBeginner,
		Links:     d == DifficultyBeginner,
	}
}

// Location is one playable round target, produced by the discovery service.
type Location struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Coord geo.Coordinate `json:"coord"`
}

// infDistance marks a round finalized without a guess.
var infDistance = math.Inf(1)

// RoundResult records one player's outcome for one round. A round finalized
// without a guess carries an infinite distance and zero points.
type RoundResult struct {
	Distance float64 // kilometers; +Inf when no guess was placed
	Points   int
}

// MarshalJSON encodes a missing guess as a null distance, since JSON has no
// infinity.
func (r RoundResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Distance *float64 `json:"distance"`
		Points   int      `json:"points"`
	}{Points: r.Points}
	if !math.IsInf(r.Distance, 1) {
		out.Distance = &r.Distance
	}
	return json.Marshal(out)
}

// Slot identifies an independent scoring track: 0 is the single-player slot,
// 1 and 2 are the two multiplayer slots.
type Slot int

// PendingEntry is the head of the high-score queue: the slot whose name is
// being collected and the score it will be recorded with.
type PendingEntry struct {
	Player Slot `json:"player"`
	Score  int  `json:"score"`
}

// Event is published on a session's event stream whenever the state changes
// or the round countdown ticks.
type Event struct {
	Type         string `json:"type"` // "state" or "tick"
	Phase        Phase  `json:"phase"`
	Round        int    `json:"round"`
	ActivePlayer int    `json:"activePlayer,omitempty"`
	TimeLeft     int    `json:"timeLeft,omitempty"`
}

// Snapshot is the full observable state of a session, rendered by the client
// as-is.
type Snapshot struct {
	Phase        Phase             `json:"phase"`
	Mode         Mode              `json:"mode,omitempty"`
	Difficulty   Difficulty        `json:"difficulty,omitempty"`
	Controls     *PanoramaControls `json:"controls,omitempty"`
	LoadError    string            `json:"loadError,omitempty"`
	Round        int               `json:"round"`
	TotalRounds  int               `json:"totalRounds"`
	Location     *Location         `json:"location,omitempty"`
	Guess        *geo.Coordinate   `json:"guess,omitempty"`
	ActivePlayer int               `json:"activePlayer,omitempty"`
	TimeLeft     int               `json:"timeLeft,omitempty"`
	P1Guess      *geo.Coordinate   `json:"p1Guess,omitempty"`
	P2Guess      *geo.Coordinate   `json:"p2Guess,omitempty"`
	Results      []RoundResult     `json:"results,omitempty"`
	P1Results    []RoundResult     `json:"p1Results,omitempty"`
	P2Results    []RoundResult     `json:"p2Results,omitempty"`
	TotalScore   int               `json:"totalScore"`
	P1Total      int               `json:"p1Total"`
	P2Total      int               `json:"p2Total"`
	PendingEntry *PendingEntry     `json:"pendingEntry,omitempty"`
}
