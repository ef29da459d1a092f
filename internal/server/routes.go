package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/geoworld/geoexplorer/internal/leaderboard"
)

func addRoutes(r chi.Router, logger *slog.Logger, db *sql.DB, board *leaderboard.Board, sessions *Registry, broker *Broker, spaDir string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Geo Explorer API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))
	r.Get("/ws/echo", handleWSEcho(logger))

	r.Post("/api/session", handleCreateSession(sessions))
	r.Get("/api/leaderboard", handleLeaderboard(board))

	r.Route("/api/game", func(r chi.Router) {
		// SSE identifies the session by query token; EventSource can't set headers.
		r.Get("/events", handleEvents(sessions, broker))

		// Everything else resolves the session from the bearer token.
		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware(sessions))
			r.Get("/state", handleGameState())
			r.Post("/play", handlePlay())
			r.Post("/mode", handleSelectMode())
			r.Post("/difficulty", handleSelectDifficulty())
			r.Post("/back", handleBack())
			r.Post("/guess", handleGuess())
			r.Post("/lock", handleLock())
			r.Post("/next", handleNextRound())
			r.Post("/continue", handleContinue())
			r.Post("/name", handleSubmitName())
			r.Post("/menu", handleMainMenu())
			r.Post("/leaderboard", handleOpenLeaderboard())
		})
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
