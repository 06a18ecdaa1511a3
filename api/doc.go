// Package api exposes the game service over HTTP.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "strict"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Session info with stats
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board, score and flags
//   - POST /api/sessions/{id}/move - Apply {"direction": "up|down|left|right"}
//   - POST /api/sessions/{id}/restart - Discard the game and seed a new one
//
// High Scores and Configuration:
//   - GET /api/highscores?limit=N - Ranked records, best first
//   - GET /api/configs - Available rule presets
//   - GET /api/configs/{name} - One preset
//
// Other:
//   - GET /healthz - Liveness
//   - GET /ws?session={id} - WebSocket subscription (when a hub is configured)
//
// Errors are JSON objects carrying the message and status code:
//
//	{"error": "session not found: brave-otter", "code": 404}
//
// Unknown sessions and presets map to 404, invalid directions to 400.
package api
