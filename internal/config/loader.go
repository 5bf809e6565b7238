package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads a battle scenario.
// Search order: customPath -> ~/.hex-tactics/configs/battle.yaml -> ./configs/battle.yaml -> embedded default
func Load(customPath string) (BattleConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return BattleConfig{}, fmt.Errorf("read config %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return BattleConfig{}, fmt.Errorf("parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	candidates := []string{userConfigPath("battle.yaml"), filepath.Join("configs", "battle.yaml")}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg, err := Parse(data)
		if err != nil {
			slog.Warn("skipping unreadable scenario", "path", path, "err", err)
			continue
		}
		slog.Debug("scenario loaded", "path", path)
		return cfg, nil
	}

	cfg, err := Parse(defaultBattleYAML)
	if err != nil {
		return DefaultBattleConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes a scenario on top of the defaults and validates it.
// Fields missing from data keep their default values.
func Parse(data []byte) (BattleConfig, error) {
	cfg := DefaultBattleConfig()
	cfg.Units = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return BattleConfig{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return BattleConfig{}, err
	}
	return cfg, nil
}

// Marshal encodes a scenario as YAML.
func Marshal(cfg BattleConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hex-tactics", "configs", filename)
}
