package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mfcatalog/internal/core/logger"
	"mfcatalog/internal/core/types"

	"github.com/goccy/go-yaml"
)

// LoadConfig loads configuration from a YAML file and applies defaults. A
// missing file yields the defaults.
func LoadConfig(configFile string) (*types.Config, error) {
	config := &types.Config{}

	if configFile != "" && fileExists(configFile) {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	}

	merged := mergeConfig(config, types.DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configFile, err)
	}
	return merged, nil
}

// mergeConfig merges loaded config with defaults, with loaded values taking precedence
func mergeConfig(loaded *types.Config, defaults types.Config) *types.Config {
	return &types.Config{
		Debug:    loaded.Debug,
		LogLevel: coalesce(loaded.LogLevel, defaults.LogLevel),
		Store: types.StoreConfig{
			BaseDir:     coalesce(loaded.Store.BaseDir, defaults.Store.BaseDir),
			Catalog:     coalesce(loaded.Store.Catalog, defaults.Store.Catalog),
			BusyTimeout: coalesce(loaded.Store.BusyTimeout, defaults.Store.BusyTimeout),
		},
		Actor: types.ActorConfig{
			QueueSize: coalesce(loaded.Actor.QueueSize, defaults.Actor.QueueSize),
		},
	}
}

func coalesce[T comparable](loaded, defaultVal T) T {
	var zero T
	if loaded != zero {
		return loaded
	}
	return defaultVal
}

// Validate checks values that cannot be defaulted.
func Validate(config *types.Config) error {
	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return err
	}
	if config.Actor.QueueSize < 0 {
		return fmt.Errorf("actor queue_size must not be negative, got %d", config.Actor.QueueSize)
	}
	if config.Store.BusyTimeout != "" {
		if _, err := time.ParseDuration(config.Store.BusyTimeout); err != nil {
			return fmt.Errorf("store busy_timeout: %w", err)
		}
	}
	return nil
}

// SaveConfig writes config as YAML, creating the parent directory.
func SaveConfig(configFile string, config *types.Config) error {
	if configFile == "" {
		return fmt.Errorf("config file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory for %s: %w", configFile, err)
	}

	data, err := yaml.MarshalWithOptions(config, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configFile, err)
	}
	return nil
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ResolveConfigPath resolves a config file path, checking common locations
func ResolveConfigPath(configFile string) string {
	if configFile != "" {
		return types.ExpandHome(configFile)
	}

	commonPaths := []string{
		"mfcatalog.yaml",
		"mfcatalog.yml",
		types.ExpandHome("~/.config/mfcatalog/config.yaml"),
		"/etc/mfcatalog/config.yaml",
	}

	for _, path := range commonPaths {
		if fileExists(path) {
			return path
		}
	}

	return ""
}
