package highscore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultFileName is the file the ranked list lives in under the data dir.
const DefaultFileName = "highscores.json"

// FileStore keeps the ranked list in a single JSON file
type FileStore struct {
	path     string
	capacity int
	mu       sync.Mutex
}

// NewFileStore creates a store backed by path. Nothing is touched on disk
// until the first Update.
func NewFileStore(path string, capacity int) *FileStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FileStore{path: path, capacity: capacity}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Best(s.read())
}

func (s *FileStore) Update(ctx context.Context, candidate Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Default(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.read()
	next, _, changed := Insert(current, candidate, s.capacity)
	if !changed {
		return Best(current), nil
	}

	if err := writeFile(s.path, next); err != nil {
		return Best(current), fmt.Errorf("save high scores: %w", err)
	}

	log.Debug().Str("path", s.path).Int("score", candidate.Score).Int("moves", candidate.Moves).Msg("high scores saved")
	return Best(next), nil
}

func (s *FileStore) Top(ctx context.Context, n int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return limit(s.read(), n), nil
}

func (s *FileStore) Close() error {
	return nil
}

// read loads the list, degrading to empty on any failure
func (s *FileStore) read() []Record {
	records, err := ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("ignoring unreadable high scores")
		}
		return nil
	}
	return limit(records, s.capacity)
}

// ReadFile parses a high-score file into a ranked list. It accepts the
// current list format as well as a bare single record.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func decode(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorrupt)
	}

	// Older files were written by a JSON encoder that spells an infinite move
	// count as a bare Infinity token.
	data = bytes.ReplaceAll(data, []byte("Infinity"), []byte("null"))

	var records []Record
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	case '{':
		var single Record
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		records = []Record{single}
	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrCorrupt, data[0])
	}

	for _, r := range records {
		if r.Score < 0 || r.Moves < 0 {
			return nil, fmt.Errorf("%w: negative score or moves", ErrCorrupt)
		}
	}
	return Rank(records), nil
}

// writeFile replaces path atomically: the list goes to a temp file in the same
// directory, is synced, then renamed over the old file.
func writeFile(path string, records []Record) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".highscores-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
