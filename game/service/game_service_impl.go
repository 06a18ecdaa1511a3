package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smirk-dev/game2048/game/engine"
	"github.com/smirk-dev/game2048/game/highscore"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	scores   highscore.Store
	now      func() time.Time
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. scores may be nil, in
// which case finished games are not recorded.
func NewGameService(sessions SessionManager, configs ConfigManager, scores highscore.Store) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		scores:   scores,
		now:      time.Now,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	state := sess.Engine.GetState()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      &state,
		GameConfig:     sess.Config,
		Stats:          state.Stats(),
	}
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config := s.configs.GetDefault()
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				var ids []string
				if available, listErr := s.configs.ListConfigs(); listErr == nil {
					for _, cfg := range available {
						ids = append(ids, cfg.ConfigID)
					}
				}
				return nil, fmt.Errorf("%w: '%s' (available: %v)", ErrConfigNotFound, configName, ids)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().Str("session", sess.ID).Str("config", config.Name).Msg("session created")
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions, most recently used first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LastAccessedAt.After(result[j].LastAccessedAt)
	})
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return err
	}
	return nil
}

// Move applies one direction to a session. Finished games ignore input.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (use up, down, left or right)", engine.ErrInvalidDirection, direction)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	ignored := sess.Engine.GetState().Finished(sess.Config.WinEndsGame)
	t := sess.Engine.Move(dir)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:       t.Changed,
		Ignored:       ignored,
		GameState:     &state,
		Transition:    t,
		Message:       state.Message,
		PossibleMoves: sess.Engine.GetPossibleMoves(),
	}
	result.Events = s.moveEvents(t, state)

	if t.BecameWon || t.BecameOver {
		result.HighScore = s.submitScore(ctx, sess, state)
	}

	if t.Changed {
		if err := s.sessions.Save(sessionID); err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Msg("failed to persist session")
		}
	}

	log.Debug().
		Str("session", sess.ID).
		Str("direction", dir.String()).
		Bool("changed", t.Changed).
		Int("score", state.Score).
		Int("moves", state.MoveCount).
		Msg("move")

	return result, nil
}

func (s *gameServiceImpl) moveEvents(t engine.Transition, state engine.GameState) []GameEvent {
	var events []GameEvent
	now := s.now()

	if t.Changed {
		events = append(events, GameEvent{
			Type:      EventMove,
			Message:   fmt.Sprintf("Moved %s, +%d", t.Direction, t.ScoreDelta),
			Timestamp: now,
		})
	}
	if t.BecameWon {
		events = append(events, GameEvent{
			Type:      EventWon,
			Message:   fmt.Sprintf("Reached %d with score %d", engine.WinningTile, state.Score),
			Timestamp: now,
		})
	}
	if t.BecameOver {
		events = append(events, GameEvent{
			Type:      EventOver,
			Message:   fmt.Sprintf("No moves left. Final score %d in %d moves", state.Score, state.MoveCount),
			Timestamp: now,
		})
	}
	return events
}

// submitScore offers a finished (or won) game to the high-score store. It is
// called once per latched flag. Both submissions of one game carry the same
// key, so the later one replaces the earlier entry instead of adding a second.
func (s *gameServiceImpl) submitScore(ctx context.Context, sess *Session, state engine.GameState) *HighScoreResult {
	if s.scores == nil {
		return nil
	}
	sessionID := sess.ID

	candidate := highscore.Record{
		Score:      state.Score,
		Moves:      state.MoveCount,
		RecordedAt: s.now().UTC(),
		Game:       sess.GameKey(),
	}

	best, err := s.scores.Update(ctx, candidate)
	if err != nil {
		log.Error().Err(err).Str("session", sessionID).Int("score", state.Score).Msg("failed to save high score")
		return &HighScoreResult{Best: best, Error: err.Error()}
	}

	result := &HighScoreResult{
		Best:    best,
		NewBest: best.Same(candidate),
	}
	if top, err := s.scores.Top(ctx, 0); err == nil {
		result.Rank = highscore.RankOf(top, candidate)
	}

	log.Info().
		Str("session", sessionID).
		Int("score", state.Score).
		Int("moves", state.MoveCount).
		Int("rank", result.Rank).
		Bool("new_best", result.NewBest).
		Msg("high score submitted")
	return result
}

// Restart discards the session's game and seeds a fresh one
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()
	sess.Round++
	s.sessions.UpdateLastAccessed(sessionID)
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("failed to persist session")
	}

	log.Info().Str("session", sess.ID).Msg("game restarted")
	return &state, nil
}

// GetGameState returns the current game state for a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.GetState()
	return &state, nil
}

// HighScores returns the ranked list, best first. limit <= 0 returns all.
func (s *gameServiceImpl) HighScores(ctx context.Context, limit int) ([]highscore.Record, error) {
	if s.scores == nil {
		return []highscore.Record{}, nil
	}

	records, err := s.scores.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read high scores: %w", err)
	}
	if records == nil {
		records = []highscore.Record{}
	}
	return records, nil
}

// ListConfigs returns all available rule presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific rule preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}
