package engine

import (
	"math/rand/v2"
	"time"
)

// Source is the randomness consumed by tile spawning.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// NewSource returns a PCG-backed source. A zero seed picks a time-based seed.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SpawnTile places a 2 (90%) or a 4 (10%) on a uniformly chosen empty cell.
// The cell is drawn before the value. A full board is returned unchanged with
// a nil position.
func SpawnTile(b Board, src Source) (Board, *Position) {
	empty := EmptyCells(b)
	if len(empty) == 0 {
		return b, nil
	}

	cell := empty[src.IntN(len(empty))]
	value := 4
	if src.Float64() < TwoProbability {
		value = 2
	}

	b[cell.Row][cell.Col] = value
	return b, &cell
}
