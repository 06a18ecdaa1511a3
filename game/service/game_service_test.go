package service_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/smirk-dev/game2048/game/engine"
	"github.com/smirk-dev/game2048/game/highscore"
	"github.com/smirk-dev/game2048/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config, engine.NewSource(uint64(len(m.sessions)+1)))
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	classic := engine.DefaultGameConfig()

	strict := engine.DefaultGameConfig()
	strict.Name = "strict"
	strict.Description = "Win ends the game"
	strict.WinEndsGame = true

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"classic": classic,
			"strict":  strict,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for id, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    id + ".json",
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			WinEndsGame: config.WinEndsGame,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

// MockScoreStore records every submission
type MockScoreStore struct {
	records   []highscore.Record
	submitted []highscore.Record
	fail      error
}

func (m *MockScoreStore) Load(ctx context.Context) highscore.Record {
	return highscore.Best(m.records)
}

func (m *MockScoreStore) Update(ctx context.Context, candidate highscore.Record) (highscore.Record, error) {
	m.submitted = append(m.submitted, candidate)
	if m.fail != nil {
		return highscore.Best(m.records), m.fail
	}
	m.records, _, _ = highscore.Insert(m.records, candidate, highscore.DefaultCapacity)
	return highscore.Best(m.records), nil
}

func (m *MockScoreStore) Top(ctx context.Context, n int) ([]highscore.Record, error) {
	if n > 0 && len(m.records) > n {
		return m.records[:n], nil
	}
	return m.records, nil
}

func (m *MockScoreStore) Close() error { return nil }

// terminalAfterLeft has a single gap; sliding left fills the board into a
// position with no merges whichever tile spawns.
func terminalAfterLeft() engine.Board {
	return engine.Board{
		{0, 16, 32, 8},
		{32, 64, 128, 16},
		{64, 128, 256, 512},
		{128, 256, 512, 1024},
	}
}

type fixture struct {
	svc      service.GameService
	sessions *MockSessionManager
	scores   *MockScoreStore
}

func newFixture() *fixture {
	sessions := NewMockSessionManager()
	scores := &MockScoreStore{}
	return &fixture{
		svc:      service.NewGameService(sessions, NewMockConfigManager(), scores),
		sessions: sessions,
		scores:   scores,
	}
}

func (f *fixture) sessionWithBoard(t *testing.T, configName string, board engine.Board) string {
	t.Helper()
	info, err := f.svc.CreateSession(context.Background(), configName)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	sess := f.sessions.sessions[info.ID]
	if err := sess.Engine.SetState(&engine.GameState{Board: board}); err != nil {
		t.Fatalf("Failed to set state: %v", err)
	}
	return info.ID
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	tests := []struct {
		name       string
		configName string
		wantConfig string
		wantErr    error
	}{
		{"create with default config", "", "classic", nil},
		{"create with specific config", "strict", "strict", nil},
		{"create with invalid config", "nonexistent", "", service.ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := f.svc.CreateSession(ctx, tt.configName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateSession() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession() unexpected error: %v", err)
			}
			if info.ConfigName != tt.wantConfig {
				t.Errorf("Expected config %s, got %s", tt.wantConfig, info.ConfigName)
			}
			if engine.CountTiles(info.GameState.Board) != engine.InitialTiles {
				t.Errorf("Expected %d starting tiles, got %d", engine.InitialTiles, engine.CountTiles(info.GameState.Board))
			}
		})
	}
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.sessionWithBoard(t, "classic", engine.Board{{2, 2, 0, 0}})

	t.Run("valid move", func(t *testing.T) {
		result, err := f.svc.Move(ctx, id, "LEFT")
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if !result.Success || result.Transition.ScoreDelta != 4 {
			t.Errorf("Expected a scoring move, got %+v", result.Transition)
		}
		if result.GameState.Board[0][0] != 4 || result.GameState.MoveCount != 1 {
			t.Errorf("Unexpected state %+v", result.GameState)
		}
		if len(result.Events) != 1 || result.Events[0].Type != service.EventMove {
			t.Errorf("Expected one move event, got %+v", result.Events)
		}
		if result.HighScore != nil {
			t.Error("Expected no high-score submission for a regular move")
		}
		if f.sessions.saves != 1 {
			t.Errorf("Expected the session to be saved once, got %d", f.sessions.saves)
		}
	})

	t.Run("unchanged board", func(t *testing.T) {
		sess := f.sessions.sessions[id]
		sess.Engine.SetState(&engine.GameState{Board: engine.Board{{2, 0, 0, 0}}})

		result, err := f.svc.Move(ctx, id, "up")
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if result.Success || result.Ignored {
			t.Errorf("Expected a no-op move, got %+v", result)
		}
		if len(result.Events) != 0 {
			t.Errorf("Expected no events, got %+v", result.Events)
		}
	})

	t.Run("invalid session", func(t *testing.T) {
		_, err := f.svc.Move(ctx, "nonexistent", "up")
		if !errors.Is(err, service.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		_, err := f.svc.Move(ctx, id, "diagonal")
		if !errors.Is(err, engine.ErrInvalidDirection) {
			t.Errorf("Expected ErrInvalidDirection, got %v", err)
		}
	})
}

func TestGameService_WinSubmitsScoreOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.sessionWithBoard(t, "classic", engine.Board{{1024, 1024, 0, 0}})

	result, err := f.svc.Move(ctx, id, "left")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !result.Transition.BecameWon {
		t.Fatal("Expected the merge to win")
	}
	if result.HighScore == nil {
		t.Fatal("Expected a high-score submission on win")
	}
	if !result.HighScore.NewBest || result.HighScore.Rank != 1 {
		t.Errorf("Expected a new best at rank 1, got %+v", result.HighScore)
	}
	if result.HighScore.Best.Score != 2048 || result.HighScore.Best.Moves != 1 {
		t.Errorf("Expected best 2048 in 1 move, got %+v", result.HighScore.Best)
	}

	var sawWon bool
	for _, e := range result.Events {
		sawWon = sawWon || e.Type == service.EventWon
	}
	if !sawWon {
		t.Errorf("Expected a game_won event, got %+v", result.Events)
	}

	result, err = f.svc.Move(ctx, id, "right")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !result.Success {
		t.Error("Expected play to continue after a win under classic rules")
	}
	if result.HighScore != nil || len(f.scores.submitted) != 1 {
		t.Errorf("Expected exactly one submission, got %d", len(f.scores.submitted))
	}
}

func TestGameService_WinEndsGame(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.sessionWithBoard(t, "strict", engine.Board{{1024, 1024, 0, 0}})

	if _, err := f.svc.Move(ctx, id, "left"); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	result, err := f.svc.Move(ctx, id, "right")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !result.Ignored || result.Success {
		t.Errorf("Expected move after a strict win to be ignored, got %+v", result)
	}
	if len(result.PossibleMoves) != 0 {
		t.Errorf("Expected no possible moves, got %v", result.PossibleMoves)
	}
	if len(f.scores.submitted) != 1 {
		t.Errorf("Expected one submission, got %d", len(f.scores.submitted))
	}
}

func TestGameService_GameOverSubmitsScoreOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.scores.records = []highscore.Record{{Score: 5000, Moves: 400}}
	id := f.sessionWithBoard(t, "classic", terminalAfterLeft())

	result, err := f.svc.Move(ctx, id, "left")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !result.Transition.BecameOver || !result.GameState.Over {
		t.Fatalf("Expected game over, got %+v", result.Transition)
	}
	if result.HighScore == nil {
		t.Fatal("Expected a high-score submission on game over")
	}
	if result.HighScore.NewBest {
		t.Error("Expected the stored best to stay")
	}
	if result.HighScore.Best.Score != 5000 {
		t.Errorf("Expected best 5000, got %d", result.HighScore.Best.Score)
	}
	if result.HighScore.Rank != 2 {
		t.Errorf("Expected rank 2, got %d", result.HighScore.Rank)
	}

	result, err = f.svc.Move(ctx, id, "up")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !result.Ignored {
		t.Error("Expected moves after game over to be ignored")
	}
	if len(f.scores.submitted) != 1 {
		t.Errorf("Expected one submission, got %d", len(f.scores.submitted))
	}
}

func TestGameService_ContinuedWinKeepsOneEntry(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	store := highscore.NewFileStore(filepath.Join(t.TempDir(), highscore.DefaultFileName), highscore.DefaultCapacity)
	svc := service.NewGameService(sessions, NewMockConfigManager(), store)

	info, err := svc.CreateSession(ctx, "classic")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	sess := sessions.sessions[info.ID]
	sess.Engine.SetState(&engine.GameState{Board: engine.Board{{1024, 1024, 0, 0}}})

	result, err := svc.Move(ctx, info.ID, "left")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !result.Transition.BecameWon || result.HighScore == nil {
		t.Fatalf("Expected a win with a submission, got %+v", result)
	}

	// keep playing the same game until no move is left
	won := sess.Engine.GetState()
	sess.Engine.SetState(&engine.GameState{
		Board: engine.Board{
			{4, 4, 32, 8},
			{32, 64, 128, 16},
			{64, 128, 256, 512},
			{128, 256, 512, 1024},
		},
		Score:     won.Score,
		MoveCount: won.MoveCount,
		Won:       true,
	})

	result, err = svc.Move(ctx, info.ID, "left")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !result.Transition.BecameOver || result.HighScore == nil {
		t.Fatalf("Expected game over with a submission, got %+v", result)
	}
	if !result.HighScore.NewBest || result.HighScore.Rank != 1 {
		t.Errorf("Expected the final score to replace the win at rank 1, got %+v", result.HighScore)
	}

	top, err := store.Top(ctx, 0)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("Expected one entry for one game, got %+v", top)
	}
	if top[0].Score != 2056 || top[0].Moves != 2 {
		t.Errorf("Expected 2056 in 2 moves, got %+v", top[0])
	}

	t.Run("restart starts a separate game", func(t *testing.T) {
		before := sess.GameKey()
		if _, err := svc.Restart(ctx, info.ID); err != nil {
			t.Fatalf("Restart() error = %v", err)
		}
		if sess.GameKey() == before {
			t.Fatal("Expected a new game key after restart")
		}

		sess.Engine.SetState(&engine.GameState{Board: terminalAfterLeft()})
		if _, err := svc.Move(ctx, info.ID, "left"); err != nil {
			t.Fatalf("Move() error = %v", err)
		}

		top, _ := store.Top(ctx, 0)
		if len(top) != 2 {
			t.Errorf("Expected two entries for two games, got %+v", top)
		}
	})
}

func TestGameService_HighScoreWriteFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.scores.fail = errors.New("disk full")
	id := f.sessionWithBoard(t, "classic", terminalAfterLeft())

	result, err := f.svc.Move(ctx, id, "left")
	if err != nil {
		t.Fatalf("Move() should not fail on a high-score write error: %v", err)
	}
	if result.HighScore == nil || result.HighScore.Error == "" {
		t.Fatalf("Expected the write failure to be reported, got %+v", result.HighScore)
	}
	if !result.GameState.Over {
		t.Error("Expected the game to be over regardless of the store")
	}
}

func TestGameService_NoScoreStore(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	svc := service.NewGameService(sessions, NewMockConfigManager(), nil)

	info, _ := svc.CreateSession(ctx, "")
	sessions.sessions[info.ID].Engine.SetState(&engine.GameState{Board: terminalAfterLeft()})

	result, err := svc.Move(ctx, info.ID, "left")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if result.HighScore != nil {
		t.Error("Expected no high-score result without a store")
	}

	scores, err := svc.HighScores(ctx, 5)
	if err != nil || len(scores) != 0 {
		t.Errorf("Expected empty high scores, got %v, %v", scores, err)
	}
}

func TestGameService_Restart(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.sessionWithBoard(t, "classic", terminalAfterLeft())
	f.svc.Move(ctx, id, "left")

	state, err := f.svc.Restart(ctx, id)
	if err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if state.Over || state.Score != 0 || state.MoveCount != 0 {
		t.Errorf("Expected a fresh game, got %+v", state.Stats())
	}
	if engine.CountTiles(state.Board) != engine.InitialTiles {
		t.Errorf("Expected %d tiles, got %d", engine.InitialTiles, engine.CountTiles(state.Board))
	}

	if _, err := f.svc.Restart(ctx, "nonexistent"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_GetGameState(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.sessionWithBoard(t, "classic", engine.Board{{8, 0, 0, 0}})

	state, err := f.svc.GetGameState(ctx, id)
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	if state.Board[0][0] != 8 {
		t.Errorf("Expected restored board, got %v", state.Board)
	}

	if _, err := f.svc.GetGameState(ctx, "nonexistent"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_ListAndDeleteSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	for i := 0; i < 3; i++ {
		if _, err := f.svc.CreateSession(ctx, "classic"); err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
	}

	sessions, err := f.svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}

	if err := f.svc.DeleteSession(ctx, sessions[0].ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if err := f.svc.DeleteSession(ctx, sessions[0].ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}

	sessions, _ = f.svc.ListSessions(ctx)
	if len(sessions) != 2 {
		t.Errorf("Expected 2 sessions after delete, got %d", len(sessions))
	}
}

func TestGameService_HighScores(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.scores.records = []highscore.Record{
		{Score: 300, Moves: 10},
		{Score: 200, Moves: 10},
		{Score: 100, Moves: 10},
	}

	scores, err := f.svc.HighScores(ctx, 2)
	if err != nil {
		t.Fatalf("HighScores() error = %v", err)
	}
	if len(scores) != 2 || scores[0].Score != 300 {
		t.Errorf("Expected top two records, got %v", scores)
	}

	scores, _ = f.svc.HighScores(ctx, 0)
	if len(scores) != 3 {
		t.Errorf("Expected all records, got %d", len(scores))
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	configs, err := f.svc.ListConfigs(ctx)
	if err != nil || len(configs) != 2 {
		t.Fatalf("Expected two configs, got %v, %v", configs, err)
	}

	strict, err := f.svc.LoadConfig(ctx, "strict")
	if err != nil || !strict.WinEndsGame {
		t.Errorf("Expected strict config, got %+v, %v", strict, err)
	}
}
