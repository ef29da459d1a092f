package server

import "net/http"

type NameRequest struct {
	Name string `json:"name"`
}

// handleContinue leaves the finished screen: qualifying scores queue for
// name entry, otherwise the leaderboard shows directly.
func handleContinue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessionFrom(r).Continue(); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}

// handleSubmitName admits the pending high score under the given initials.
func handleSubmitName() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := sessionFrom(r).SubmitName(r.Context(), req.Name); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
	}
}
