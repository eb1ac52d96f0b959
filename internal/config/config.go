package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/daynotes/config.yaml"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds all daynotes configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Calendar CalendarConfig `yaml:"calendar"`
	Logging  LoggingConfig  `yaml:"logging"`
	Export   ExportConfig   `yaml:"export"`
}

type StorageConfig struct {
	Backend           string `yaml:"backend"`
	Path              string `yaml:"path"`
	SQLiteFile        string `yaml:"sqlite_file"`
	SnapshotDir       string `yaml:"snapshot_dir"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode"`
}

type CalendarConfig struct {
	WeekStart  string `yaml:"week_start"`
	Fullscreen bool   `yaml:"fullscreen"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// File is relative to Storage.Path. Empty logs to stderr.
	File string `yaml:"file"`
}

type ExportConfig struct {
	ProductID    string `yaml:"product_id"`
	CalendarName string `yaml:"calendar_name"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read, contains invalid YAML or
// fails validation.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("invalid storage backend %q: want %s or %s", c.Storage.Backend, BackendSQLite, BackendFile)
	}
	if _, err := parseWeekday(c.Calendar.WeekStart); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	return nil
}

// WeekStartDay returns the first column of the month grid.
func (c *Config) WeekStartDay() time.Weekday {
	wd, err := parseWeekday(c.Calendar.WeekStart)
	if err != nil {
		return time.Monday
	}
	return wd
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "monday", "mon":
		return time.Monday, nil
	case "sunday", "sun":
		return time.Sunday, nil
	default:
		return 0, fmt.Errorf("invalid week start %q: want monday or sunday", s)
	}
}

// DataDir returns Storage.Path with ~ expanded.
func (c *Config) DataDir() (string, error) {
	return expandPath(c.Storage.Path)
}

// SQLitePath returns the absolute path of the SQLite database.
func (c *Config) SQLitePath() (string, error) {
	return c.resolve(c.Storage.SQLiteFile)
}

// SnapshotPath returns the directory the file backend writes into.
func (c *Config) SnapshotPath() (string, error) {
	return c.resolve(c.Storage.SnapshotDir)
}

// LogPath returns the log file path, or "" when logging goes to stderr.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File == "" {
		return "", nil
	}
	return c.resolve(c.Logging.File)
}

// resolve joins name onto the data directory unless it is already absolute.
func (c *Config) resolve(name string) (string, error) {
	name, err := expandPath(name)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// ExpandPath is expandPath for callers outside the package.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
