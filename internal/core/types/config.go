package types

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultBaseDir     = "~/dm3270/databases"
	DefaultCatalog     = "catalog.db"
	DefaultBusyTimeout = "5s"
	DefaultQueueSize   = 256
)

// Config is the top-level configuration structure
type Config struct {
	Debug    bool        `yaml:"debug"`
	LogLevel string      `yaml:"log_level"`
	Store    StoreConfig `yaml:"store"`
	Actor    ActorConfig `yaml:"actor"`
}

// StoreConfig says where catalogs live and how the database is opened.
type StoreConfig struct {
	BaseDir     string `yaml:"base_dir"`     // Directory holding catalog files
	Catalog     string `yaml:"catalog"`      // Catalog file name, or an absolute path
	BusyTimeout string `yaml:"busy_timeout"` // How long a locked database is retried
}

// ActorConfig tunes the catalog actor.
type ActorConfig struct {
	QueueSize int `yaml:"queue_size"` // Pending requests before Submit blocks
}

// ParseDuration parses a duration string with fallback to default
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	if dur, err := time.ParseDuration(durationStr); err == nil {
		return dur
	}
	return defaultDuration
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Store:    DefaultStoreConfig(),
		Actor:    DefaultActorConfig(),
	}
}

func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		BaseDir:     DefaultBaseDir,
		Catalog:     DefaultCatalog,
		BusyTimeout: DefaultBusyTimeout,
	}
}

func DefaultActorConfig() ActorConfig {
	return ActorConfig{QueueSize: DefaultQueueSize}
}

// Path returns the catalog database file: Catalog itself when absolute,
// otherwise Catalog under BaseDir. A leading ~ is expanded to the home
// directory.
func (s StoreConfig) Path() string {
	if filepath.IsAbs(s.Catalog) {
		return s.Catalog
	}
	return filepath.Join(ExpandHome(s.BaseDir), s.Catalog)
}

// Timeout returns BusyTimeout as a duration.
func (s StoreConfig) Timeout() time.Duration {
	return ParseDuration(s.BusyTimeout, 5*time.Second)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
