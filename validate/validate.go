// Package validate checks the files the game reads at startup: rule presets
// in the config directory and the persisted high-score list.
//
// A preset is checked for:
//   - JSON structure
//   - required fields and messages (engine.ValidateGameConfig)
//   - a file name that matches its config ID
//
// A high-score file is checked for:
//   - list or legacy single-record shape
//   - non-negative score and move counts
//   - ranking order and capacity
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/smirk-dev/game2048/game/engine"
	"github.com/smirk-dev/game2048/game/highscore"
)

// Result captures the outcome of validating a single file.
// Notes are informational; Errors make the file invalid.
type Result struct {
	File   string
	Errors []string
	Notes  []string
}

// Valid reports whether no errors were found
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// Config loads and validates a single preset file
func Config(path string) Result {
	result := Result{File: filepath.Base(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var cfg engine.GameConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&cfg); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if cfg.Name != "" && !strings.EqualFold(cfg.Name, id) {
		result.note("Name %q differs from file name %q", cfg.Name, id)
	}

	if cfg.WinEndsGame {
		result.note("Game ends at %d", engine.WinningTile)
	} else {
		result.note("Play continues after %d", engine.WinningTile)
	}
	return result
}

// Dir validates every *.json preset in dir, sorted by file name
func Dir(dir string) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("find config files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no config files in %s", dir)
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, f := range files {
		results = append(results, Config(f))
	}
	return results, nil
}

// HighScores validates a high-score file. A missing file is valid: the game
// starts from the default record.
func HighScores(path string, capacity int) Result {
	result := Result{File: filepath.Base(path)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		result.note("No high-score file yet")
		return result
	}
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	records, err := highscore.ReadFile(path)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	var stored []highscore.Record
	if err := json.Unmarshal(raw, &stored); err == nil && !isRanked(stored) {
		result.note("Records are not in rank order; they will be re-ranked on next save")
	}
	if strings.Contains(string(raw), "Infinity") {
		result.note("Legacy Infinity move count will be rewritten as null")
	}
	if capacity > 0 && len(records) > capacity {
		result.note("%d records stored, only the top %d are kept", len(records), capacity)
	}

	result.note("%d records, best %d", len(records), highscore.Best(records).Score)
	return result
}

func isRanked(records []highscore.Record) bool {
	for i := 1; i < len(records); i++ {
		if highscore.Better(records[i], records[i-1]) {
			return false
		}
	}
	return true
}
