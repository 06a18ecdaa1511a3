package highscore

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// UnboundedMoves stands in for an infinite move count. It only appears in the
// default record, so any finished game with the same score beats it.
const UnboundedMoves = math.MaxInt

// Record is one finished (or won) game worth remembering
type Record struct {
	Score      int
	Moves      int
	RecordedAt time.Time

	// Game identifies the game that produced the record. A game keeps at most
	// one entry in the list. Empty means unknown and never matches.
	Game string
}

type recordJSON struct {
	Score      int        `json:"score"`
	Moves      *int       `json:"moves"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
	Game       string     `json:"game,omitempty"`
}

// Default is the record reported when nothing has been stored yet
func Default() Record {
	return Record{Score: 0, Moves: UnboundedMoves}
}

// Unbounded reports whether Moves is the infinite sentinel
func (r Record) Unbounded() bool {
	return r.Moves == UnboundedMoves
}

// MarshalJSON writes an unbounded move count as null
func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{Score: r.Score, Game: r.Game}
	if !r.Unbounded() {
		moves := r.Moves
		out.Moves = &moves
	}
	if !r.RecordedAt.IsZero() {
		at := r.RecordedAt
		out.RecordedAt = &at
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a null or missing move count as unbounded
func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Score = in.Score
	r.Game = in.Game
	r.Moves = UnboundedMoves
	if in.Moves != nil {
		r.Moves = *in.Moves
	}
	r.RecordedAt = time.Time{}
	if in.RecordedAt != nil {
		r.RecordedAt = *in.RecordedAt
	}
	return nil
}

// Better reports whether a beats b: higher score wins, fewer moves breaks ties
func Better(a, b Record) bool {
	return a.Score > b.Score || (a.Score == b.Score && a.Moves < b.Moves)
}

// Rank returns a copy of records ordered best first. Equal records keep
// their relative order.
func Rank(records []Record) []Record {
	ranked := make([]Record, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Better(ranked[i], ranked[j])
	})
	return ranked
}

// Insert places candidate into the ranked list, keeping at most capacity
// entries. It returns the new list, the candidate's 1-based rank (0 when it
// did not qualify) and whether the list changed.
//
// When the list already holds an entry for candidate's game, candidate
// replaces it if better and is dropped otherwise.
func Insert(records []Record, candidate Record, capacity int) ([]Record, int, bool) {
	ranked := Rank(records)
	if i := indexOfGame(ranked, candidate.Game); i >= 0 {
		if !Better(candidate, ranked[i]) {
			return limit(ranked, capacity), 0, false
		}
		ranked = append(ranked[:i], ranked[i+1:]...)
	}
	if capacity > 0 && len(ranked) > capacity {
		ranked = ranked[:capacity]
	}

	pos := len(ranked)
	for i, r := range ranked {
		if Better(candidate, r) {
			pos = i
			break
		}
	}
	if capacity > 0 && pos >= capacity {
		return ranked, 0, false
	}

	out := make([]Record, 0, len(ranked)+1)
	out = append(out, ranked[:pos]...)
	out = append(out, candidate)
	out = append(out, ranked[pos:]...)
	if capacity > 0 && len(out) > capacity {
		out = out[:capacity]
	}
	return out, pos + 1, true
}

func indexOfGame(records []Record, game string) int {
	if game == "" {
		return -1
	}
	for i, r := range records {
		if r.Game == game {
			return i
		}
	}
	return -1
}

// Same reports whether r and o describe the same result
func (r Record) Same(o Record) bool {
	return r.Score == o.Score && r.Moves == o.Moves && r.RecordedAt.Equal(o.RecordedAt) && r.Game == o.Game
}

// RankOf returns the 1-based position of r in a ranked list, or 0
func RankOf(records []Record, r Record) int {
	for i, rec := range records {
		if rec.Same(r) {
			return i + 1
		}
	}
	return 0
}

// Best returns the head of a ranked list, or Default when it is empty
func Best(records []Record) Record {
	if len(records) == 0 {
		return Default()
	}
	return records[0]
}
