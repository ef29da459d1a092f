package server

import (
	"net/http"

	"github.com/geoworld/geoexplorer/internal/game"
)

type ModeRequest struct {
	Mode string `json:"mode"`
}

type DifficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

// handlePlay moves the session from the start screen to mode selection.
func handlePlay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessionFrom(r).Play(); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}

func handleSelectMode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ModeRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		mode, err := game.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := sessionFrom(r).SelectMode(mode); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}

func handleSelectDifficulty() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DifficultyRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		difficulty, err := game.ParseDifficulty(req.Difficulty)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := sessionFrom(r).SelectDifficulty(difficulty); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}

// handleBack steps backwards through the pre-game menus.
func handleBack() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessionFrom(r).Back(); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}

// handleMainMenu abandons the game in progress and returns to the start
// screen. Accepted from any phase.
func handleMainMenu() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessionFrom(r).MainMenu(); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}

// handleOpenLeaderboard shows the score table from the start screen.
func handleOpenLeaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessionFrom(r).OpenLeaderboard(); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}
