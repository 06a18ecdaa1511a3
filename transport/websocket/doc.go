// Package websocket pushes live game updates to browser and bot subscribers.
//
// A single Hub goroutine owns the subscriber table. Connections, disconnects
// and broadcasts all reach it over channels, so HTTP handlers may publish from
// any goroutine.
//
// Clients subscribe with the session query parameter (/ws?session=brave-otter)
// and receive one JSON Message per frame:
//
//	{"session_id":"brave-otter","event":"state_update","game_state":{...}}
//	{"session_id":"brave-otter","event":"game_over","data":{...}}
//
// Frames sent by clients are read and discarded; moves go through the REST API.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.BroadcastToSession(id, &state)
//	hub.BroadcastEvent(id, websocket.EventGameWon, result)
package websocket
