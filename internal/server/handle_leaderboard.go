package server

import (
	"net/http"

	"github.com/geoworld/geoexplorer/internal/leaderboard"
)

// LeaderboardResponse is the persisted top-score table, descending by score.
type LeaderboardResponse struct {
	Entries []leaderboard.Entry `json:"entries"`
}

func handleLeaderboard(board *leaderboard.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := board.Entries()
		if entries == nil {
			entries = []leaderboard.Entry{}
		}
		writeJSON(w, http.StatusOK, LeaderboardResponse{Entries: entries})
	}
}
