package engine

import (
	"errors"
	"strings"
)

const (
	// Size is the fixed board dimension.
	Size = 4

	// WinningTile is the tile value that latches a win.
	WinningTile = 2048

	// TwoProbability is the chance a spawned tile is a 2; otherwise it is a 4.
	TwoProbability = 0.9

	// InitialTiles is the number of tiles seeded into a fresh board.
	InitialTiles = 2
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrNilState         = errors.New("state cannot be nil")
)

// Board is the 4x4 grid, row-major. Zero marks an empty cell.
type Board [Size][Size]int

// Row is a single board row as seen by the slide algorithm.
type Row [Size]int

// Position is a cell coordinate on the board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Direction names one of the four legal moves
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every move in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts user input into a Direction
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down, Left, Right:
		return d, nil
	default:
		return "", ErrInvalidDirection
	}
}

// String implements fmt.Stringer
func (d Direction) String() string {
	return string(d)
}

// GameConfig holds the rule preset a game is played under
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	WinEndsGame bool   `json:"win_ends_game"`
	Messages    struct {
		Welcome  string `json:"welcome"`
		Victory  string `json:"victory"`
		GameOver string `json:"game_over"`
		NoChange string `json:"no_change"`
		Continue string `json:"continue"`
	} `json:"messages"`
}

// GameState is a complete, copyable snapshot of one game.
// Score, MoveCount, Won and Over are maintained by the tracker.
type GameState struct {
	Board      Board  `json:"board"`
	Score      int    `json:"score"`
	MoveCount  int    `json:"move_count"`
	Won        bool   `json:"won"`
	Over       bool   `json:"over"`
	Message    string `json:"message,omitempty"`
	ConfigName string `json:"config_name,omitempty"`
}

// Transition describes what a single move did to a state
type Transition struct {
	Direction    Direction `json:"direction"`
	Changed      bool      `json:"changed"`
	ScoreDelta   int       `json:"score_delta"`
	Spawned      *Position `json:"spawned,omitempty"`
	SpawnedValue int       `json:"spawned_value,omitempty"`

	// BecameWon and BecameOver are only set on the move that first latches the flag.
	BecameWon  bool `json:"became_won,omitempty"`
	BecameOver bool `json:"became_over,omitempty"`
}

// Stats is the read-only view of the tracker fields
type Stats struct {
	Score   int  `json:"score"`
	Moves   int  `json:"moves"`
	Won     bool `json:"won"`
	Over    bool `json:"over"`
	MaxTile int  `json:"max_tile"`
}
