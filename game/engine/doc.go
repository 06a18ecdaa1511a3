// Package engine provides the core game logic for 2048.
//
// The engine package implements the game mechanics including:
//   - The fixed 4x4 board and the slide/merge algorithm
//   - Board rotation used to reduce every direction to a left slide
//   - Random tile spawning from an injected, seedable Source
//   - Terminal-state and winning-tile detection
//   - Score, move counter and latched win/over flags
//
// Core Types:
//
// Board is a value type, so every transition function is pure: Move takes a
// GameState, a Direction and a Source and returns the next GameState together
// with a Transition describing what changed. GameEngine wraps that model with
// the stateful Engine interface used by sessions and the service layer.
//
// Usage:
//
//	src := engine.NewSource(42)
//	state := engine.NewGame(src)
//
//	state, t := engine.Move(state, engine.Left, src)
//	if t.BecameWon {
//		fmt.Println("2048!")
//	}
//
// Game Rules:
//
// A move slides every tile as far as possible in one direction, merging equal
// neighbours once per slide. A move that changes nothing is ignored; any other
// move adds the merged values to the score, spawns one tile (2 with
// probability 0.9, otherwise 4) and counts as a move. Reaching 2048 latches
// Won; a full board with no equal neighbours latches Over. Neither flag is
// cleared until a new game starts.
package engine
