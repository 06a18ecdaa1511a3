package highscore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const schema = `CREATE TABLE IF NOT EXISTS high_scores (
	rank        INTEGER PRIMARY KEY,
	score       INTEGER NOT NULL,
	moves       INTEGER,
	recorded_at TEXT,
	game        TEXT
);`

// databases created before records carried a game key lack the column
const addGameColumn = `ALTER TABLE high_scores ADD COLUMN game TEXT`

// SQLiteStore keeps the ranked list in a SQLite table, one row per rank.
// A NULL moves column is the unbounded sentinel.
type SQLiteStore struct {
	db       *sql.DB
	capacity int
	mu       sync.Mutex
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(path string, capacity int) (*SQLiteStore, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create high_scores: %w", err)
	}
	if _, err := db.Exec(addGameColumn); err != nil && !strings.Contains(err.Error(), "duplicate column") {
		db.Close()
		return nil, fmt.Errorf("migrate high_scores: %w", err)
	}

	return &SQLiteStore{db: db, capacity: capacity}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) Record {
	records, err := readRows(ctx, s.db)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable high scores")
		return Default()
	}
	return Best(records)
}

func (s *SQLiteStore) Update(ctx context.Context, candidate Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Default(), fmt.Errorf("save high scores: %w", err)
	}
	defer tx.Rollback()

	current, err := readRows(ctx, tx)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable high scores")
		current = nil
	}

	next, _, changed := Insert(limit(current, s.capacity), candidate, s.capacity)
	if !changed {
		return Best(current), nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM high_scores`); err != nil {
		return Best(current), fmt.Errorf("save high scores: %w", err)
	}
	for i, r := range next {
		var moves sql.NullInt64
		if !r.Unbounded() {
			moves = sql.NullInt64{Int64: int64(r.Moves), Valid: true}
		}
		var at sql.NullString
		if !r.RecordedAt.IsZero() {
			at = sql.NullString{String: r.RecordedAt.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		game := sql.NullString{String: r.Game, Valid: r.Game != ""}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO high_scores (rank, score, moves, recorded_at, game) VALUES (?, ?, ?, ?, ?)`,
			i+1, r.Score, moves, at, game,
		); err != nil {
			return Best(current), fmt.Errorf("save high scores: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Best(current), fmt.Errorf("save high scores: %w", err)
	}
	return Best(next), nil
}

func (s *SQLiteStore) Top(ctx context.Context, n int) ([]Record, error) {
	records, err := readRows(ctx, s.db)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Msg("ignoring unreadable high scores")
		return nil, nil
	}
	return limit(limit(records, s.capacity), n), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func readRows(ctx context.Context, q querier) ([]Record, error) {
	rows, err := q.QueryContext(ctx, `SELECT score, moves, recorded_at, game FROM high_scores ORDER BY rank`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r     Record
			moves sql.NullInt64
			at    sql.NullString
			game  sql.NullString
		)
		if err := rows.Scan(&r.Score, &moves, &at, &game); err != nil {
			return nil, err
		}
		r.Game = game.String
		r.Moves = UnboundedMoves
		if moves.Valid {
			r.Moves = int(moves.Int64)
		}
		if at.Valid {
			if t, err := time.Parse(time.RFC3339Nano, at.String); err == nil {
				r.RecordedAt = t
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return Rank(out), nil
}
