// Package config provides configuration file and environment variable support for vogonix.
//
// Configuration priority (highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Config file (~/.vogonix/config.toml)
//  4. Built-in defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the vogonix configuration.
type Config struct {
	// DB is the path to the database file.
	// Default: ~/.vogonix/vogonix.db
	DB string `toml:"db"`

	// NoColor disables colored output.
	NoColor bool `toml:"no_color"`

	// LogLevel is one of debug, info, warn, error.
	// Default: warn
	LogLevel string `toml:"log_level"`

	// LogFile receives log output. Empty means stderr.
	LogFile string `toml:"log_file"`

	Jira   JiraConfig   `toml:"jira"`
	Timer  TimerConfig  `toml:"timer"`
	Backup BackupConfig `toml:"backup"`
}

// JiraConfig holds issue tracker credentials.
type JiraConfig struct {
	URL   string `toml:"url"`
	User  string `toml:"user"`
	Token string `toml:"token"`
}

// Configured reports whether enough settings exist to reach the tracker.
func (j JiraConfig) Configured() bool {
	return j.URL != "" && j.User != "" && j.Token != ""
}

// TimerConfig controls worklog submission.
type TimerConfig struct {
	// RoundToMinutes is the step tracked time is rounded to before submission.
	// Default: 1
	RoundToMinutes int `toml:"round_to_minutes"`
}

// BackupConfig controls automatic database backups.
type BackupConfig struct {
	Enabled       bool   `toml:"enabled"`
	IntervalHours int    `toml:"interval_hours"`
	MaxCount      int    `toml:"max_count"`
	Path          string `toml:"path"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Timer: TimerConfig{
			RoundToMinutes: 1,
		},
		Backup: BackupConfig{
			Enabled:       true,
			IntervalHours: 24,
			MaxCount:      5,
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vogonix", "config.toml")
}

// Load loads configuration from the default config file and environment variables.
func Load() (*Config, error) {
	return LoadFromPath(DefaultConfigPath())
}

// LoadFromPath loads configuration from a specific file path.
// Environment variables take precedence over file settings.
// Returns default config if the config file doesn't exist.
func LoadFromPath(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if db := os.Getenv("VOGONIX_DB"); db != "" {
		c.DB = db
	}

	// VOGONIX_NO_COLOR - any value means true
	if _, ok := os.LookupEnv("VOGONIX_NO_COLOR"); ok {
		c.NoColor = true
	}

	if level := os.Getenv("VOGONIX_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}

	if url := os.Getenv("VOGONIX_JIRA_URL"); url != "" {
		c.Jira.URL = url
	}
	if user := os.Getenv("VOGONIX_JIRA_USER"); user != "" {
		c.Jira.User = user
	}
	if token := os.Getenv("VOGONIX_JIRA_TOKEN"); token != "" {
		c.Jira.Token = token
	}

	if enabled := os.Getenv("VOGONIX_BACKUP_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			c.Backup.Enabled = b
		}
	}
}

func (c *Config) normalize() {
	if c.Timer.RoundToMinutes <= 0 {
		c.Timer.RoundToMinutes = 1
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.MaxCount <= 0 {
		c.Backup.MaxCount = 5
	}
}

// SampleConfig returns a sample configuration file content.
func SampleConfig() string {
	return `# Vogonix Configuration File
# Location: ~/.vogonix/config.toml
#
# Configuration priority (highest to lowest):
#   1. Command-line flags
#   2. Environment variables (VOGONIX_*)
#   3. This config file
#   4. Built-in defaults

# Path to the database file
# Default: ~/.vogonix/vogonix.db
# Environment: VOGONIX_DB
# db = "/path/to/vogonix.db"

# Disable colored output
# Environment: VOGONIX_NO_COLOR (any value = true)
# no_color = false

# Log level: debug, info, warn, error
# Environment: VOGONIX_LOG_LEVEL
# log_level = "warn"

# Log file (default: stderr)
# log_file = "/tmp/vogonix.log"

[jira]
# Environment: VOGONIX_JIRA_URL, VOGONIX_JIRA_USER, VOGONIX_JIRA_TOKEN
# url = "https://example.atlassian.net"
# user = "me@example.com"
# token = "..."

[timer]
# Tracked time is rounded to this many minutes before submission
# round_to_minutes = 1

[backup]
# Environment: VOGONIX_BACKUP_ENABLED
# enabled = true
# interval_hours = 24
# max_count = 5
# path = ""
`
}

// WriteConfigFile writes the sample config file to the specified path.
// Creates parent directories if needed.
func WriteConfigFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(SampleConfig()), 0600)
}
