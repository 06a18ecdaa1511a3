package service

import (
	"time"

	"github.com/smirk-dev/game2048/game/engine"
	"github.com/smirk-dev/game2048/game/highscore"
)

// Event types reported in MoveResult.Events and pushed to WebSocket clients
const (
	EventMove    = "move"
	EventWon     = "game_won"
	EventOver    = "game_over"
	EventRestart = "restart"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
	Stats          engine.Stats       `json:"stats"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	// Success is true when the board changed.
	Success bool `json:"success"`

	// Ignored is true when the game no longer accepts moves.
	Ignored bool `json:"ignored,omitempty"`

	GameState     *engine.GameState  `json:"game_state"`
	Transition    engine.Transition  `json:"transition"`
	Message       string             `json:"message"`
	Events        []GameEvent        `json:"events,omitempty"`
	PossibleMoves []engine.Direction `json:"possible_moves"`
	HighScore     *HighScoreResult   `json:"high_score,omitempty"`
}

// HighScoreResult reports what happened when a finished game was offered to
// the high-score store
type HighScoreResult struct {
	Best    highscore.Record `json:"best"`
	Rank    int              `json:"rank"`
	NewBest bool             `json:"new_best"`
	Error   string           `json:"error,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ConfigInfo provides information about a rule preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	WinEndsGame bool   `json:"win_ends_game"`
}
