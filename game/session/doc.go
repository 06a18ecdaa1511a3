// Package session provides session management for 2048.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Readable session names ("brave-otter") with collision suffixes
//   - Session lifecycle management and expiry
//   - Optional JSON file persistence, one file per session
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns its own engine, so games never share state.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Persistence:
//
// With NewManagerWithPersistence, sessions are written on creation and on
// Save, and sessions missing from memory are looked up on disk. Files are
// replaced atomically so a crash never leaves a half-written session.
package session
