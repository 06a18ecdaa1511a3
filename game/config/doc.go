// Package config manages the rule presets a 2048 game can be played under.
//
// Presets are JSON files in a config directory, one per file, addressed by
// their file name without the extension:
//
//	{
//	  "name": "classic",
//	  "description": "Reach 2048, then keep merging for a higher score",
//	  "win_ends_game": false,
//	  "messages": {"welcome": "...", "victory": "...", "game_over": "...", "continue": "..."}
//	}
//
// Two presets ship with the game:
//   - classic: a win is announced and play continues
//   - strict: the game ends the moment 2048 appears
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	strict, err := manager.LoadConfig("strict")
//	presets, err := manager.ListConfigs()
//
// When the directory holds no valid preset the manager falls back to the
// built-in classic rules from the engine package.
package config
