package server

import (
	"net/http"

	"github.com/geoworld/geoexplorer/internal/geo"
)

type GuessRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// handleGuess records a map click as the current selection.
func handleGuess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GuessRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := sessionFrom(r).PickGuess(geo.Coordinate{Lat: req.Lat, Lng: req.Lng}); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}

// handleLock commits the current selection: in single-player this finalizes
// the round, in multiplayer it hands the map to player 2 or finalizes after
// player 2's lock.
func handleLock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessionFrom(r).LockGuess(); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}

// handleNextRound advances past the round-end screen.
func handleNextRound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessionFrom(r).NextRound(); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}
