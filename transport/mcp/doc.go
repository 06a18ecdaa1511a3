// Package mcp lets AI agents play 2048 over the Model Context Protocol.
//
// Client is a thin MCP server: every tool is a call against the REST API, so
// agents and browser clients share the same sessions and high-score table.
//
// Tools:
//   - create_session, list_sessions
//   - game_state, move, restart_game
//   - high_scores, list_configs, game_instructions
//
// Transport Modes:
//   - Stdio: ServeStdio, for local MCP hosts
//   - HTTP: HTTPHandler, mounted at POST /mcp by the serve command
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal().Err(err).Msg("mcp stdio")
//	}
package mcp
