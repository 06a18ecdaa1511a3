package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// ValidateGameConfig checks that a rule preset is complete
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if config.Messages.GameOver == "" {
		return fmt.Errorf("config validation: messages.game_over is required")
	}
	if !config.WinEndsGame && config.Messages.Continue == "" {
		return fmt.Errorf("config validation: messages.continue is required when win_ends_game is false")
	}
	return nil
}

// LoadGameConfig reads and validates a preset from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultGameConfig returns the built-in classic rules
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:        "classic",
		Description: "Reach 2048, then keep merging for a higher score",
		WinEndsGame: false,
	}
	config.Messages.Welcome = "Join the tiles, get to 2048!"
	config.Messages.Victory = "You Win!"
	config.Messages.GameOver = "Game Over!"
	config.Messages.NoChange = "Nothing moved"
	config.Messages.Continue = "Keep going for a higher score"
	return config
}
