package engine

// SlideRowLeft compacts a row to the left and merges equal neighbours.
// Pairs are scanned once, left to right, so a merged tile never merges again in
// the same slide: [2,2,2,2] becomes [4,4,0,0] with a delta of 8.
func SlideRowLeft(row Row) (Row, int) {
	compacted := compact(row)

	delta := 0
	for i := 0; i < Size-1; i++ {
		if compacted[i] != 0 && compacted[i] == compacted[i+1] {
			compacted[i] *= 2
			compacted[i+1] = 0
			delta += compacted[i]
		}
	}

	return compact(compacted), delta
}

// compact moves non-zero values left preserving order and pads with zeros
func compact(row Row) Row {
	var out Row
	n := 0
	for _, v := range row {
		if v != 0 {
			out[n] = v
			n++
		}
	}
	return out
}

// RotateClockwise returns the board turned 90 degrees clockwise
func RotateClockwise(b Board) Board {
	var out Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			out[c][Size-1-r] = b[r][c]
		}
	}
	return out
}

// RotateCounterClockwise returns the board turned 90 degrees counter-clockwise
func RotateCounterClockwise(b Board) Board {
	var out Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			out[Size-1-c][r] = b[r][c]
		}
	}
	return out
}

// Slide applies a directional move to the board without spawning.
// Every direction is reduced to a left slide: right is a half turn, up is a
// counter-clockwise turn, down a clockwise one, each undone afterwards.
func Slide(b Board, dir Direction) (Board, int) {
	switch dir {
	case Left:
		return slideLeft(b)
	case Right:
		out, delta := slideLeft(RotateClockwise(RotateClockwise(b)))
		return RotateClockwise(RotateClockwise(out)), delta
	case Up:
		out, delta := slideLeft(RotateCounterClockwise(b))
		return RotateClockwise(out), delta
	case Down:
		out, delta := slideLeft(RotateClockwise(b))
		return RotateCounterClockwise(out), delta
	default:
		return b, 0
	}
}

func slideLeft(b Board) (Board, int) {
	var out Board
	total := 0
	for r := 0; r < Size; r++ {
		row, delta := SlideRowLeft(Row(b[r]))
		out[r] = row
		total += delta
	}
	return out, total
}

// EmptyCells returns the empty coordinates in row-major order
func EmptyCells(b Board) []Position {
	var cells []Position
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] == 0 {
				cells = append(cells, Position{Row: r, Col: c})
			}
		}
	}
	return cells
}

// IsTerminal reports whether no move is legal: the board is full and no two
// horizontally or vertically adjacent cells are equal.
func IsTerminal(b Board) bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] == 0 {
				return false
			}
			if c+1 < Size && b[r][c] == b[r][c+1] {
				return false
			}
			if r+1 < Size && b[r][c] == b[r+1][c] {
				return false
			}
		}
	}
	return true
}

// HasWinningTile reports whether any cell holds the winning tile
func HasWinningTile(b Board) bool {
	for _, row := range b {
		for _, v := range row {
			if v == WinningTile {
				return true
			}
		}
	}
	return false
}

// CanMove reports whether sliding in dir would change the board
func CanMove(b Board, dir Direction) bool {
	out, _ := Slide(b, dir)
	return out != b
}

// PossibleMoves returns the directions that would change the board
func PossibleMoves(b Board) []Direction {
	var moves []Direction
	for _, dir := range Directions {
		if CanMove(b, dir) {
			moves = append(moves, dir)
		}
	}
	return moves
}
