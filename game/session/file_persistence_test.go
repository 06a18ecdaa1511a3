package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smirk-dev/game2048/game/config"
	"github.com/smirk-dev/game2048/game/engine"
	"github.com/smirk-dev/game2048/game/service"
)

func newTestPersistence(t *testing.T) (*FilePersistence, *config.Manager, string) {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	dir := t.TempDir()
	persistence, err := NewFilePersistence(dir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return persistence, configManager, dir
}

func TestFilePersistence(t *testing.T) {
	persistence, configManager, dir := newTestPersistence(t)

	strict, err := configManager.LoadConfig("strict")
	if err != nil {
		t.Fatalf("Failed to load strict preset: %v", err)
	}
	eng, err := engine.NewEngine(strict, engine.NewSource(9))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	eng.SetState(&engine.GameState{
		Board:     engine.Board{{2, 4, 8, 16}, {0, 0, 0, 2}},
		Score:     140,
		MoveCount: 12,
	})

	created := time.Now().Add(-time.Hour).Round(time.Second)
	session := &service.Session{
		ID:             "calm-heron",
		Engine:         eng,
		Config:         strict,
		CreatedAt:      created,
		LastAccessedAt: created,
		Round:          3,
	}

	t.Run("save and load", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if !persistence.Exists("calm-heron") {
			t.Fatal("Expected persisted session to exist")
		}

		loaded, err := persistence.Load("calm-heron", nil)
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		state := loaded.Engine.GetState()
		if state.Board != session.Engine.GetState().Board {
			t.Errorf("Expected board %v, got %v", session.Engine.GetState().Board, state.Board)
		}
		if state.Score != 140 || state.MoveCount != 12 {
			t.Errorf("Expected score 140 and 12 moves, got %d and %d", state.Score, state.MoveCount)
		}
		if !loaded.Config.WinEndsGame {
			t.Error("Expected the strict preset to be restored")
		}
		if !loaded.CreatedAt.Equal(created) {
			t.Errorf("Expected created time %v, got %v", created, loaded.CreatedAt)
		}
		if loaded.Round != 3 {
			t.Errorf("Expected round 3, got %d", loaded.Round)
		}
		if loaded.GameKey() != session.GameKey() {
			t.Errorf("Expected game key %s, got %s", session.GameKey(), loaded.GameKey())
		}
	})

	t.Run("load draws from the given source", func(t *testing.T) {
		loaded, err := persistence.Load("calm-heron", engine.NewSource(21))
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		// the engine seeded its opening board from the same source
		src := engine.NewSource(21)
		engine.NewGame(src)
		want, _ := engine.Move(loaded.Engine.GetState(), engine.Left, src)
		loaded.Engine.Move(engine.Left)
		if got := loaded.Engine.GetState().Board; got != want.Board {
			t.Errorf("Expected board %v, got %v", want.Board, got)
		}
	})

	t.Run("file layout", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "calm-heron.json"))
		if err != nil {
			t.Fatalf("Failed to read session file: %v", err)
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("Session file is not valid JSON: %v", err)
		}
		for _, field := range []string{"id", "config_name", "created_at", "last_accessed_at", "game_state"} {
			if _, ok := raw[field]; !ok {
				t.Errorf("Session file should contain field %s", field)
			}
		}
		if string(raw["config_name"]) != `"strict"` {
			t.Errorf("Expected config id strict, got %s", raw["config_name"])
		}
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		persistence.Save(session)
		entries, _ := os.ReadDir(dir)
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), ".tmp") {
				t.Errorf("Unexpected temp file %s", entry.Name())
			}
		}
	})

	t.Run("list all", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		if len(ids) != 1 || ids[0] != "calm-heron" {
			t.Errorf("Expected [calm-heron], got %v", ids)
		}
	})

	t.Run("load missing", func(t *testing.T) {
		if _, err := persistence.Load("ghost", nil); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("load corrupt", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)
		if _, err := persistence.Load("broken", nil); err == nil {
			t.Error("Expected error for corrupt session file")
		}
		os.Remove(filepath.Join(dir, "broken.json"))
	})

	t.Run("delete", func(t *testing.T) {
		if err := persistence.Delete("calm-heron"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if persistence.Exists("calm-heron") {
			t.Error("Expected file to be removed")
		}
		if err := persistence.Delete("calm-heron"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("nil session", func(t *testing.T) {
		if err := persistence.Save(nil); err == nil {
			t.Error("Expected error saving nil session")
		}
	})
}

func TestManagerWithPersistence(t *testing.T) {
	persistence, configManager, _ := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence)

	session, err := manager.Create("", configManager.GetDefault())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if !persistence.Exists(session.ID) {
		t.Fatal("Session should be saved on creation")
	}

	session.Engine.SetState(&engine.GameState{Board: engine.Board{{4, 4, 0, 0}}})
	session.Engine.Move(engine.Left)
	if err := manager.Save(session.ID); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Run("get falls back to disk", func(t *testing.T) {
		fresh := NewManagerWithPersistence(persistence)
		loaded, err := fresh.Get(session.ID)
		if err != nil {
			t.Fatalf("Failed to get session from persistence: %v", err)
		}
		if loaded.Engine.GetScore() != 8 {
			t.Errorf("Expected persisted score 8, got %d", loaded.Engine.GetScore())
		}

		again, _ := fresh.Get(session.ID)
		if again != loaded {
			t.Error("Session should be cached in memory after loading from persistence")
		}
	})

	t.Run("restored sessions use the source factory", func(t *testing.T) {
		fresh := NewManagerWithPersistence(persistence)
		fresh.SetSourceFactory(func() engine.Source { return engine.NewSource(5) })

		loaded, err := fresh.Get(session.ID)
		if err != nil {
			t.Fatalf("Failed to get session from persistence: %v", err)
		}
		loaded.Engine.SetState(&engine.GameState{Board: engine.Board{{2, 0, 0, 0}, {0, 0, 0, 4}}})

		// the engine seeded its opening board from the same source
		src := engine.NewSource(5)
		engine.NewGame(src)
		want, _ := engine.Move(loaded.Engine.GetState(), engine.Left, src)
		loaded.Engine.Move(engine.Left)
		if got := loaded.Engine.GetState().Board; got != want.Board {
			t.Errorf("Expected seeded spawn %v, got %v", want.Board, got)
		}
	})

	t.Run("load persisted sessions", func(t *testing.T) {
		manager.Create("second-game", configManager.GetDefault())

		fresh := NewManagerWithPersistence(persistence)
		if err := fresh.LoadPersistedSessions(); err != nil {
			t.Fatalf("LoadPersistedSessions failed: %v", err)
		}
		if fresh.Count() != 2 {
			t.Errorf("Expected 2 loaded sessions, got %d", fresh.Count())
		}
	})

	t.Run("save all", func(t *testing.T) {
		if err := manager.SaveAllSessions(); err != nil {
			t.Errorf("SaveAllSessions failed: %v", err)
		}
	})

	t.Run("delete removes file", func(t *testing.T) {
		if err := manager.Delete(session.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if persistence.Exists(session.ID) {
			t.Error("Expected persisted file to be removed")
		}
	})

	t.Run("generated IDs skip names on disk", func(t *testing.T) {
		fresh := NewManagerWithPersistence(persistence)
		s, err := fresh.Create("", configManager.GetDefault())
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if s.ID == "second-game" {
			t.Error("Expected a name not already persisted")
		}
	})
}
