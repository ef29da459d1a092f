package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/geoworld/geoexplorer/internal/game"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Geo Explorer API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Geo Explorer guessing game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws/echo
	getWSEcho, _ := r.NewOperationContext(http.MethodGet, "/ws/echo")
	getWSEcho.SetSummary("WebSocket echo")
	getWSEcho.SetDescription("Upgrades to a WebSocket connection that echoes messages back.")
	getWSEcho.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSEcho)

	// POST /api/session
	postSession, _ := r.NewOperationContext(http.MethodPost, "/api/session")
	postSession.SetSummary("Create session")
	postSession.SetDescription("Creates a new game session and returns its bearer token.")
	postSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	_ = r.AddOperation(postSession)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Returns the top scores, highest first.")
	getBoard.AddRespStructure(LeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getBoard)

	// GET /api/game/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/game/state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Returns the current snapshot of the session's game. Requires Bearer token.")
	getState.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getState)

	// GET /api/game/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/game/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of game state changes and timer ticks. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// Menu transitions share the same shape: no body, snapshot out.
	for _, op := range []struct {
		path, summary, desc string
	}{
		{"/api/game/play", "Start playing", "Moves from the start screen to mode selection. Requires Bearer token."},
		{"/api/game/back", "Go back", "Returns from a selection screen to the previous one. Requires Bearer token."},
		{"/api/game/next", "Next round", "Advances past the round summary to the next round, or to the finished screen. Requires Bearer token."},
		{"/api/game/continue", "Continue past results", "Leaves the finished screen, entering name entry for qualifying scores or the leaderboard otherwise. Requires Bearer token."},
		{"/api/game/menu", "Main menu", "Abandons the current game and returns to the start screen. Requires Bearer token."},
		{"/api/game/leaderboard", "View leaderboard", "Opens the leaderboard screen from the start screen. Requires Bearer token."},
	} {
		oc, _ := r.NewOperationContext(http.MethodPost, op.path)
		oc.SetSummary(op.summary)
		oc.SetDescription(op.desc)
		oc.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
		_ = r.AddOperation(oc)
	}

	// POST /api/game/mode
	postMode, _ := r.NewOperationContext(http.MethodPost, "/api/game/mode")
	postMode.SetSummary("Select mode")
	postMode.SetDescription("Chooses single player or multiplayer. Single player starts a game immediately. Requires Bearer token.")
	postMode.AddReqStructure(ModeRequest{})
	postMode.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	postMode.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postMode.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postMode)

	// POST /api/game/difficulty
	postDifficulty, _ := r.NewOperationContext(http.MethodPost, "/api/game/difficulty")
	postDifficulty.SetSummary("Select difficulty")
	postDifficulty.SetDescription("Chooses the multiplayer difficulty and starts the game. Requires Bearer token.")
	postDifficulty.AddReqStructure(DifficultyRequest{})
	postDifficulty.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	postDifficulty.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postDifficulty.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postDifficulty)

	// POST /api/game/guess
	postGuess, _ := r.NewOperationContext(http.MethodPost, "/api/game/guess")
	postGuess.SetSummary("Place guess")
	postGuess.SetDescription("Places or moves the current player's guess marker. Requires Bearer token.")
	postGuess.AddReqStructure(GuessRequest{})
	postGuess.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postGuess)

	// POST /api/game/lock
	postLock, _ := r.NewOperationContext(http.MethodPost, "/api/game/lock")
	postLock.SetSummary("Lock guess")
	postLock.SetDescription("Commits the current player's guess. In multiplayer play passes to the other player, then the round is scored. Requires Bearer token.")
	postLock.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	postLock.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postLock)

	// POST /api/game/name
	postName, _ := r.NewOperationContext(http.MethodPost, "/api/game/name")
	postName.SetSummary("Submit high-score name")
	postName.SetDescription("Submits a three-letter name for the pending leaderboard entry. Requires Bearer token.")
	postName.AddReqStructure(NameRequest{})
	postName.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	postName.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postName.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postName)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
