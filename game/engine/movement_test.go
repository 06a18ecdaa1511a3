package engine

import (
	"testing"
)

// nearlyTerminal has one empty cell at (0,0); sliding left fills the board
// into a checkerboard once a 4 spawns at (0,3).
func nearlyTerminal() Board {
	return Board{
		{0, 2, 4, 2},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}
}

func TestNewGame(t *testing.T) {
	state := NewGame(NewSource(42))

	if got := CountTiles(state.Board); got != InitialTiles {
		t.Fatalf("Expected %d tiles, got %d", InitialTiles, got)
	}
	for _, row := range state.Board {
		for _, v := range row {
			if v != 0 && v != 2 && v != 4 {
				t.Errorf("Unexpected starting tile %d", v)
			}
		}
	}
	if state.Score != 0 || state.MoveCount != 0 || state.Won || state.Over {
		t.Errorf("Expected zeroed tracker, got %+v", state.Stats())
	}
}

func TestNewGame_SameSeedSameBoard(t *testing.T) {
	a := NewGame(NewSource(99))
	b := NewGame(NewSource(99))
	if a.Board != b.Board {
		t.Errorf("Expected identical boards for identical seeds, got %v and %v", a.Board, b.Board)
	}
}

func TestSpawnTile_Scripted(t *testing.T) {
	tests := []struct {
		name     string
		draw     float64
		expected int
	}{
		{"low draw spawns a two", 0.0, 2},
		{"draw just under threshold spawns a two", 0.89, 2},
		{"draw at threshold spawns a four", 0.9, 4},
		{"high draw spawns a four", 0.95, 4},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			src := &scriptedSource{ints: []int{2}, floats: []float64{test.draw}}
			b, pos := SpawnTile(Board{}, src)
			if pos == nil {
				t.Fatal("Expected a spawn position on an empty board")
			}
			if *pos != (Position{Row: 0, Col: 2}) {
				t.Errorf("Expected spawn at (0,2), got %v", *pos)
			}
			if b[0][2] != test.expected {
				t.Errorf("Expected spawned value %d, got %d", test.expected, b[0][2])
			}
			if CountTiles(b) != 1 {
				t.Errorf("Expected exactly one tile, got %d", CountTiles(b))
			}
		})
	}
}

func TestSpawnTile_OnlyEmptyCellChanges(t *testing.T) {
	src := NewSource(5)
	for i := 0; i < 200; i++ {
		before := randomBoard(src)
		empty := len(EmptyCells(before))

		after, pos := SpawnTile(before, src)
		if empty == 0 {
			if pos != nil || after != before {
				t.Fatalf("Expected full board %v to be left alone", before)
			}
			continue
		}

		if pos == nil {
			t.Fatalf("Expected a spawn on %v", before)
		}
		if before[pos.Row][pos.Col] != 0 {
			t.Fatalf("Spawned onto occupied cell %v of %v", *pos, before)
		}
		changed := 0
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				if before[r][c] != after[r][c] {
					changed++
				}
			}
		}
		if changed != 1 {
			t.Fatalf("Expected one changed cell, got %d", changed)
		}
		if v := after[pos.Row][pos.Col]; v != 2 && v != 4 {
			t.Fatalf("Expected spawned 2 or 4, got %d", v)
		}
	}
}

func TestSpawnTile_FullBoard(t *testing.T) {
	b := checkerboard()
	got, pos := SpawnTile(b, NewSource(1))
	if pos != nil {
		t.Errorf("Expected nil position on a full board, got %v", *pos)
	}
	if got != b {
		t.Errorf("Expected full board unchanged")
	}
}

func TestSpawnTile_Distribution(t *testing.T) {
	src := NewSource(2024)
	twos := 0
	const trials = 10000
	for i := 0; i < trials; i++ {
		b, pos := SpawnTile(Board{}, src)
		if b[pos.Row][pos.Col] == 2 {
			twos++
		}
	}

	ratio := float64(twos) / trials
	if ratio < 0.87 || ratio > 0.93 {
		t.Errorf("Expected roughly 90%% twos, got %.3f", ratio)
	}
}

func TestMove_NoChangeIsNoOp(t *testing.T) {
	state := GameState{Board: Board{{2, 0, 0, 0}}}
	src := &scriptedSource{ints: []int{3}, floats: []float64{0.5}}

	next, tr := Move(state, Left, src)
	if next != state {
		t.Errorf("Expected unchanged state, got %+v", next)
	}
	if tr.Changed || tr.Spawned != nil || tr.ScoreDelta != 0 {
		t.Errorf("Expected empty transition, got %+v", tr)
	}
	if len(src.ints) != 1 {
		t.Error("Expected no randomness consumed by a no-op move")
	}
}

func TestMove_SpawnsAndScores(t *testing.T) {
	state := GameState{Board: Board{{2, 2, 0, 0}, {0, 0, 0, 4}}}
	// After the merge there are 14 empty cells; index 0 is (0,1).
	src := &scriptedSource{ints: []int{0}, floats: []float64{0.1}}

	next, tr := Move(state, Left, src)

	expected := Board{{4, 2, 0, 0}, {4, 0, 0, 0}}
	if next.Board != expected {
		t.Errorf("Expected board %v, got %v", expected, next.Board)
	}
	if !tr.Changed {
		t.Error("Expected transition to report a change")
	}
	if tr.ScoreDelta != 4 || next.Score != 4 {
		t.Errorf("Expected score delta 4 and score 4, got %d and %d", tr.ScoreDelta, next.Score)
	}
	if next.MoveCount != 1 {
		t.Errorf("Expected move count 1, got %d", next.MoveCount)
	}
	if tr.Spawned == nil || *tr.Spawned != (Position{Row: 0, Col: 1}) || tr.SpawnedValue != 2 {
		t.Errorf("Expected a 2 spawned at (0,1), got %v=%d", tr.Spawned, tr.SpawnedValue)
	}
	if state.Score != 0 || state.Board[0][0] != 2 {
		t.Error("Move must not mutate its input state")
	}
}

func TestMove_DirectionHelpers(t *testing.T) {
	start := GameState{Board: Board{{0, 0, 0, 0}, {0, 2, 0, 0}}}

	tests := []struct {
		name string
		move func(GameState, Source) (GameState, Transition)
		at   Position
	}{
		{"left", MoveLeft, Position{Row: 1, Col: 0}},
		{"right", MoveRight, Position{Row: 1, Col: 3}},
		{"up", MoveUp, Position{Row: 0, Col: 1}},
		{"down", MoveDown, Position{Row: 3, Col: 1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			next, tr := test.move(start, &scriptedSource{})
			if !tr.Changed {
				t.Fatal("Expected the tile to move")
			}
			if next.Board[test.at.Row][test.at.Col] != 2 {
				t.Errorf("Expected tile at %v, got board %v", test.at, next.Board)
			}
		})
	}
}

func TestMove_OverLatchesOnce(t *testing.T) {
	state := GameState{Board: nearlyTerminal()}
	src := &scriptedSource{ints: []int{0}, floats: []float64{0.95}}

	next, tr := Move(state, Left, src)
	if next.Board != checkerboard() {
		t.Fatalf("Expected checkerboard, got %v", next.Board)
	}
	if !tr.BecameOver || !next.Over {
		t.Fatalf("Expected the move to latch game over, got %+v", tr)
	}
	if next.MoveCount != 1 {
		t.Errorf("Expected move count 1, got %d", next.MoveCount)
	}

	after, tr := Move(next, Right, NewSource(1))
	if after != next {
		t.Error("Expected moves after game over to be ignored")
	}
	if tr.Changed || tr.BecameOver {
		t.Errorf("Expected empty transition after game over, got %+v", tr)
	}
}

func TestMove_WinLatchesOnce(t *testing.T) {
	state := GameState{Board: Board{{1024, 1024, 0, 0}}}

	next, tr := Move(state, Left, &scriptedSource{})
	if !tr.BecameWon || !next.Won {
		t.Fatalf("Expected the merge to latch a win, got %+v", tr)
	}
	if tr.ScoreDelta != 2048 {
		t.Errorf("Expected score delta 2048, got %d", tr.ScoreDelta)
	}

	again, tr := Move(next, Right, &scriptedSource{})
	if !tr.Changed {
		t.Fatal("Expected play to continue after a win")
	}
	if tr.BecameWon {
		t.Error("Expected win to be reported only once")
	}
	if !again.Won {
		t.Error("Expected win flag to stay latched")
	}
	if again.MoveCount != 2 {
		t.Errorf("Expected move count 2, got %d", again.MoveCount)
	}
}

func TestStats(t *testing.T) {
	state := GameState{
		Board:     Board{{2, 512, 0, 0}, {0, 8, 0, 0}},
		Score:     1200,
		MoveCount: 37,
		Won:       false,
		Over:      false,
	}
	stats := state.Stats()
	if stats.Score != 1200 || stats.Moves != 37 || stats.MaxTile != 512 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestFinished(t *testing.T) {
	tests := []struct {
		name        string
		state       GameState
		winEndsGame bool
		expected    bool
	}{
		{"fresh game", GameState{}, false, false},
		{"won, play continues", GameState{Won: true}, false, false},
		{"won, win ends game", GameState{Won: true}, true, true},
		{"over", GameState{Over: true}, false, true},
		{"over and won", GameState{Won: true, Over: true}, true, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.state.Finished(test.winEndsGame); got != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, got)
			}
		})
	}
}
