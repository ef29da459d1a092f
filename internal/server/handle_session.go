package server

import "net/http"

// SessionResponse is returned when a new game session is created.
type SessionResponse struct {
	Token string `json:"token"`
}

func handleCreateSession(sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, _ := sessions.Create()
		writeJSON(w, http.StatusCreated, SessionResponse{Token: token})
	}
}
