package server

import (
	"errors"
	"net/http"

	"github.com/geoworld/geoexplorer/internal/game"
)

// writeGameError maps engine errors onto HTTP statuses: events the current
// phase rejects are conflicts, malformed input is a bad request.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrPhase), errors.Is(err, game.ErrNoGuess):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInvalidName), errors.Is(err, game.ErrCoordinate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
