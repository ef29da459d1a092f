package server

import "net/http"

func handleGameState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}
