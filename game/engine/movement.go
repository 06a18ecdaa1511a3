package engine

// NewGame returns a fresh state with two spawned tiles
func NewGame(src Source) GameState {
	var b Board
	for i := 0; i < InitialTiles; i++ {
		b, _ = SpawnTile(b, src)
	}
	return GameState{Board: b}
}

// Move applies dir to state and returns the next state.
// A move that leaves the board unchanged is a no-op: nothing spawns and the
// move counter stays put. Moving a finished game is also a no-op.
func Move(state GameState, dir Direction, src Source) (GameState, Transition) {
	t := Transition{Direction: dir}
	if state.Over {
		return state, t
	}

	board, delta := Slide(state.Board, dir)
	if board == state.Board {
		return state, t
	}

	next := state
	next.Board, t.Spawned = SpawnTile(board, src)
	if t.Spawned != nil {
		t.SpawnedValue = next.Board[t.Spawned.Row][t.Spawned.Col]
	}
	t.Changed = true
	t.ScoreDelta = delta

	next, t.BecameWon, t.BecameOver = next.track(delta)
	return next, t
}

// MoveLeft slides every row toward column 0
func MoveLeft(state GameState, src Source) (GameState, Transition) {
	return Move(state, Left, src)
}

// MoveRight slides every row toward the last column
func MoveRight(state GameState, src Source) (GameState, Transition) {
	return Move(state, Right, src)
}

// MoveUp slides every column toward row 0
func MoveUp(state GameState, src Source) (GameState, Transition) {
	return Move(state, Up, src)
}

// MoveDown slides every column toward the last row
func MoveDown(state GameState, src Source) (GameState, Transition) {
	return Move(state, Down, src)
}
