package engine

// track folds a successful move into the running counters and latches the
// end flags. The returned booleans are true only when the flag flips on this
// move, which lets callers fire end-of-game side effects exactly once.
func (gs GameState) track(delta int) (GameState, bool, bool) {
	gs.Score += delta
	gs.MoveCount++

	becameWon := !gs.Won && HasWinningTile(gs.Board)
	if becameWon {
		gs.Won = true
	}

	becameOver := !gs.Over && IsTerminal(gs.Board)
	if becameOver {
		gs.Over = true
	}

	return gs, becameWon, becameOver
}

// Stats returns the tracker view of the state
func (gs GameState) Stats() Stats {
	return Stats{
		Score:   gs.Score,
		Moves:   gs.MoveCount,
		Won:     gs.Won,
		Over:    gs.Over,
		MaxTile: MaxTile(gs.Board),
	}
}

// Finished reports whether input should be ignored under the given rules
func (gs GameState) Finished(winEndsGame bool) bool {
	return gs.Over || (winEndsGame && gs.Won)
}
