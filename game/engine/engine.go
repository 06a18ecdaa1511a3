package engine

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() GameState
	SetState(state *GameState) error
	Reset() GameState
	IsGameOver() bool
	IsVictory() bool
	GetScore() int
	GetMoveCount() int

	// Movement operations
	Move(dir Direction) Transition
	CanMove(dir Direction) bool
	GetPossibleMoves() []Direction

	// Configuration
	GetConfig() *GameConfig
}

// GameEngine implements Engine on top of the pure transition functions.
// It is not safe for concurrent use; callers serialize access.
type GameEngine struct {
	state  GameState
	config *GameConfig
	src    Source
}

var _ Engine = (*GameEngine)(nil)

// NewEngine creates an engine with a freshly seeded board
func NewEngine(config *GameConfig, src Source) (*GameEngine, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if src == nil {
		src = NewSource(0)
	}

	e := &GameEngine{config: config, src: src}
	e.Reset()
	return e, nil
}

// NewEngineWithDefaults creates an engine with the classic rules and a random source
func NewEngineWithDefaults() *GameEngine {
	e, _ := NewEngine(DefaultGameConfig(), NewSource(0))
	return e
}

// GetState returns a copy of the current state
func (e *GameEngine) GetState() GameState {
	return e.state
}

// SetState replaces the current state (used when restoring a session)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return ErrNilState
	}
	e.state = *state
	e.state.ConfigName = e.config.Name
	return nil
}

// Reset discards the current game and seeds a new one
func (e *GameEngine) Reset() GameState {
	e.state = NewGame(e.src)
	e.state.ConfigName = e.config.Name
	e.state.Message = e.config.Messages.Welcome
	return e.state
}

// IsGameOver returns whether no legal move remains
func (e *GameEngine) IsGameOver() bool {
	return e.state.Over
}

// IsVictory returns whether the winning tile was reached
func (e *GameEngine) IsVictory() bool {
	return e.state.Won
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetMoveCount returns the number of board-changing moves
func (e *GameEngine) GetMoveCount() int {
	return e.state.MoveCount
}

// Move applies a direction. Input is ignored once the game is finished under
// the configured rules.
func (e *GameEngine) Move(dir Direction) Transition {
	if e.state.Finished(e.config.WinEndsGame) {
		return Transition{Direction: dir}
	}

	next, t := Move(e.state, dir, e.src)
	next.Message = e.messageFor(t)
	e.state = next
	return t
}

func (e *GameEngine) messageFor(t Transition) string {
	switch {
	case t.BecameOver:
		return e.config.Messages.GameOver
	case t.BecameWon:
		if e.config.WinEndsGame {
			return e.config.Messages.Victory
		}
		return e.config.Messages.Victory + " " + e.config.Messages.Continue
	case !t.Changed:
		return e.config.Messages.NoChange
	default:
		return ""
	}
}

// CanMove checks whether dir would change the board
func (e *GameEngine) CanMove(dir Direction) bool {
	if e.state.Finished(e.config.WinEndsGame) {
		return false
	}
	return CanMove(e.state.Board, dir)
}

// GetPossibleMoves returns every direction that would change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	if e.state.Finished(e.config.WinEndsGame) {
		return nil
	}
	return PossibleMoves(e.state.Board)
}

// GetConfig returns the rules this engine plays under
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}
