package highscore

import (
	"context"
	"errors"
	"fmt"
)

// DefaultCapacity is how many records the ranked list keeps.
const DefaultCapacity = 5

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var (
	ErrUnknownBackend = errors.New("unknown high-score backend")
	ErrCorrupt        = errors.New("high-score data is corrupt")
)

// Store persists the ranked high-score list.
//
// Reads never fail: missing or unreadable storage degrades to the default
// record (or an empty list) with a logged warning. Writes are durable before
// Update returns and their failures are reported.
type Store interface {
	// Load returns the best record.
	Load(ctx context.Context) Record

	// Update offers a candidate. When it beats the stored best it is persisted
	// and returned; otherwise the stored best comes back unchanged. A candidate
	// that still fits in the ranked list is persisted into its slot.
	Update(ctx context.Context, candidate Record) (Record, error)

	// Top returns up to n records, best first.
	Top(ctx context.Context, n int) ([]Record, error)

	Close() error
}

// Open returns the store for a backend name
func Open(backend, path string, capacity int) (Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	switch backend {
	case "", BackendFile:
		return NewFileStore(path, capacity), nil
	case BackendSQLite:
		return NewSQLiteStore(path, capacity)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func limit(records []Record, n int) []Record {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}
