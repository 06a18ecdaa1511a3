// Package highscore persists the best 2048 results across runs.
//
// Results are kept as a ranked list, best first, ordered by score with fewer
// moves breaking ties. The head of the list is the high score the game shows
// while playing; the whole list backs the high-score screen.
//
// Two backends implement Store:
//   - FileStore writes a JSON array to one file with an atomic replace
//   - SQLiteStore keeps one row per rank in a high_scores table
//
// Usage:
//
//	store, err := highscore.Open(highscore.BackendFile, "data/highscores.json", highscore.DefaultCapacity)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	best, err := store.Update(ctx, highscore.Record{Score: 2400, Moves: 310})
//
// A file holding a single {"score": ..., "moves": ...} object is read as a
// one-entry list.
package highscore
