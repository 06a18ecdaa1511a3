package engine

// scriptedSource replays fixed draws so spawn outcomes are predictable.
// Exhausted scripts return 0, which picks the first empty cell and a 2.
type scriptedSource struct {
	ints   []int
	floats []float64
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func checkerboard() Board {
	return Board{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}
}

// randomBoard fills cells with small powers of two (or zero) from src
func randomBoard(src Source) Board {
	values := []int{0, 0, 2, 4, 8, 16}
	var b Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			b[r][c] = values[src.IntN(len(values))]
		}
	}
	return b
}
