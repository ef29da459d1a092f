package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/geoworld/geoexplorer/internal/game"
)

type ctxKey int

const ctxKeySession ctxKey = iota

// sessionMiddleware resolves the Bearer token to a live game session.
func sessionMiddleware(sessions *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}

			g, ok := sessions.Get(token)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySession, g)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found {
		return ""
	}
	return token
}

func sessionFrom(r *http.Request) *game.Game {
	return r.Context().Value(ctxKeySession).(*game.Game)
}
