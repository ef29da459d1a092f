package server

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/geoworld/geoexplorer/internal/game"
)

// Registry tracks live game sessions by their bearer token.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*game.Game
	newGame  func(token string) *game.Game
}

func NewRegistry(newGame func(token string) *game.Game) *Registry {
	return &Registry{
		sessions: make(map[string]*game.Game),
		newGame:  newGame,
	}
}

// Create starts a fresh session at the start screen and returns its token.
func (r *Registry) Create() (string, *game.Game) {
	token := newToken()
	g := r.newGame(token)

	r.mu.Lock()
	r.sessions[token] = g
	r.mu.Unlock()
	return token, g
}

func (r *Registry) Get(token string) (*game.Game, bool) {
	r.mu.RLock()
	g, ok := r.sessions[token]
	r.mu.RUnlock()
	return g, ok
}

// Close tears down every session's countdown and in-flight location fetch.
// TODO: evict sessions that have sat idle for hours instead of keeping them
// until shutdown.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, g := range r.sessions {
		g.Shutdown()
		delete(r.sessions, token)
	}
	return nil
}

func newToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
