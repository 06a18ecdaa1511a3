// Package service provides the business logic layer for 2048.
//
// The service package implements:
//   - Multi-session game management
//   - Rule preset lookup
//   - Move processing with latched win/game-over detection
//   - High-score submission when a game is won or lost
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager resolves rule presets.
//
// Architecture:
//
// The service layer sits between the transports (terminal, HTTP/WebSocket,
// MCP) and the game engine. Each session owns its own engine; the service
// serializes access to them and reports every move as a MoveResult.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	scores := highscore.NewFileStore("data/highscores.json", highscore.DefaultCapacity)
//	gameService := service.NewGameService(sessionMgr, configMgr, scores)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left")
//	if result.HighScore != nil {
//		fmt.Println("rank", result.HighScore.Rank)
//	}
package service
