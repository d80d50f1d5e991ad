// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for roster configuration.
	DefaultConfigDir = ".roster"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultWorldsFile is the default worlds file name.
	DefaultWorldsFile = "worlds.yaml"
	// DefaultDatabaseFile is the per-world SQLite file name.
	DefaultDatabaseFile = "roster.db"
)

// Matcher names accepted in search.matcher.
const (
	MatcherTwoTier    = "two-tier"
	MatcherSimilarity = "similarity"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Search SearchConfig `yaml:"search,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
	SQLite SQLiteConfig `yaml:"sqlite,omitempty"`
}

// SearchConfig configures name matching and derived views.
type SearchConfig struct {
	// Matcher selects the name matcher: "two-tier" or "similarity".
	Matcher      string           `yaml:"matcher,omitempty"`
	Locale       string           `yaml:"locale,omitempty"`
	Debounce     time.Duration    `yaml:"debounce,omitempty"`
	DefaultLimit int              `yaml:"default_limit,omitempty"`
	Similarity   SimilarityConfig `yaml:"similarity,omitempty"`
}

// SimilarityConfig tunes the similarity matcher.
type SimilarityConfig struct {
	Tolerance      int  `yaml:"tolerance,omitempty"`
	MinMatchLength int  `yaml:"min_match_length,omitempty"`
	IgnoreOrder    bool `yaml:"ignore_order,omitempty"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Bind string `yaml:"bind,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite relational database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	// For per-world databases, this is computed dynamically using SQLitePathForWorld.
	Path string `yaml:"path,omitempty"`
	// BusyTimeout in milliseconds; 0 uses 5000.
	BusyTimeout int `yaml:"busy_timeout,omitempty"`
}

// BusyTimeoutOrDefault returns the busy timeout in milliseconds.
func (s SQLiteConfig) BusyTimeoutOrDefault() int {
	if s.BusyTimeout > 0 {
		return s.BusyTimeout
	}
	return 5000
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Matcher:      MatcherTwoTier,
			Locale:       "en",
			Debounce:     300 * time.Millisecond,
			DefaultLimit: 50,
			Similarity: SimilarityConfig{
				MinMatchLength: 1,
			},
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 8080,
		},
	}
}

// Load loads configuration from the .roster directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'roster worlds create' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if m := os.Getenv("ROSTER_MATCHER"); m != "" {
		c.Search.Matcher = m
	}
	if l := os.Getenv("ROSTER_LOCALE"); l != "" {
		c.Search.Locale = l
	}
	if p := os.Getenv("ROSTER_PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Search.Matcher {
	case MatcherTwoTier, MatcherSimilarity:
	default:
		return fmt.Errorf("search.matcher %q: must be %s or %s", c.Search.Matcher, MatcherTwoTier, MatcherSimilarity)
	}
	if _, err := language.Parse(c.Search.Locale); err != nil {
		return fmt.Errorf("search.locale %q: %w", c.Search.Locale, err)
	}
	if c.Search.Debounce < 0 {
		return errors.New("search.debounce must not be negative")
	}
	if c.Search.DefaultLimit < 0 {
		return errors.New("search.default_limit must not be negative")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// LocaleTag returns the configured collation locale, falling back to English.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Search.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// ConfigDir returns the path to the .roster config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// WorldsFilePath returns the path to the worlds file.
func WorldsFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultWorldsFile)
}

// SanitizeWorldName converts a world name to a valid directory name.
func SanitizeWorldName(name string) string {
	name = strings.ToLower(name)

	// Replace spaces and hyphens with underscores
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}

	return name
}

// SQLitePathForWorld returns the SQLite database path for a given world.
func SQLitePathForWorld(basePath, worldName string) string {
	return filepath.Join(WorldDir(basePath, worldName), DefaultDatabaseFile)
}

// WorldDir returns the directory path for a given world.
func WorldDir(basePath, worldName string) string {
	return filepath.Join(basePath, DefaultConfigDir, "worlds", SanitizeWorldName(worldName))
}
