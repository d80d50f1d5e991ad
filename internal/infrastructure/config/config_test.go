package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestSanitizeWorldName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple lowercase", input: "onepiece", expected: "onepiece"},
		{name: "uppercase converted", input: "OnePiece", expected: "onepiece"},
		{name: "spaces to underscores", input: "one piece", expected: "one_piece"},
		{name: "hyphens to underscores", input: "one-piece", expected: "one_piece"},
		{name: "special characters removed", input: "one@piece!", expected: "onepiece"},
		{name: "consecutive underscores collapsed", input: "one--piece", expected: "one_piece"},
		{name: "leading trailing underscores trimmed", input: "-one-piece-", expected: "one_piece"},
		{name: "empty string returns default", input: "", expected: "default"},
		{name: "only special chars returns default", input: "!!!", expected: "default"},
		{name: "complex mixed input", input: "Naruto (Shippuden 2)", expected: "naruto_shippuden_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeWorldName(tt.input))
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, MatcherTwoTier, cfg.Search.Matcher)
	assert.Equal(t, "en", cfg.Search.Locale)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 50, cfg.Search.DefaultLimit)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}

func TestPaths(t *testing.T) {
	base := "/home/user/project"
	assert.Equal(t, "/home/user/project/.roster", ConfigDir(base))
	assert.Equal(t, "/home/user/project/.roster/config.yaml", ConfigFilePath(base))
	assert.Equal(t, "/home/user/project/.roster/worlds.yaml", WorldsFilePath(base))
	assert.Equal(t, "/home/user/project/.roster/worlds/one_piece/roster.db", SQLitePathForWorld(base, "One Piece"))
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config file not found")
	})

	t.Run("default file round trips", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDefault(dir))
		assert.True(t, Exists(dir))

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("write default twice fails", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDefault(dir))
		require.Error(t, WriteDefault(dir))
	})

	t.Run("values override defaults", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
		yml := "search:\n  matcher: similarity\n  locale: fr\n  debounce: 150ms\n  similarity:\n    tolerance: 20\n"
		require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte(yml), 0644))

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, MatcherSimilarity, cfg.Search.Matcher)
		assert.Equal(t, language.French, cfg.LocaleTag())
		assert.Equal(t, 150*time.Millisecond, cfg.Search.Debounce)
		assert.Equal(t, 20, cfg.Search.Similarity.Tolerance)
		assert.Equal(t, 8080, cfg.Server.Port)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
		require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte("search: [oops"), 0644))

		_, err := Load(dir)
		require.Error(t, err)
	})

	t.Run("env overrides", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDefault(dir))
		t.Setenv("ROSTER_MATCHER", MatcherSimilarity)
		t.Setenv("ROSTER_LOCALE", "sv")
		t.Setenv("ROSTER_PORT", "9090")

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, MatcherSimilarity, cfg.Search.Matcher)
		assert.Equal(t, "sv", cfg.Search.Locale)
		assert.Equal(t, 9090, cfg.Server.Port)
	})

	t.Run("env produces invalid config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDefault(dir))
		t.Setenv("ROSTER_MATCHER", "regex")

		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search.matcher")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown matcher", mutate: func(c *Config) { c.Search.Matcher = "exact" }, errMsg: "search.matcher"},
		{name: "bad locale", mutate: func(c *Config) { c.Search.Locale = "not a locale" }, errMsg: "search.locale"},
		{name: "negative debounce", mutate: func(c *Config) { c.Search.Debounce = -time.Second }, errMsg: "debounce"},
		{name: "negative limit", mutate: func(c *Config) { c.Search.DefaultLimit = -1 }, errMsg: "default_limit"},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, errMsg: "server.port"},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, errMsg: "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Server.Port = 9999
	cfg.Search.Similarity.IgnoreOrder = true

	require.NoError(t, Write(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSQLiteConfig_BusyTimeout(t *testing.T) {
	assert.Equal(t, 5000, SQLiteConfig{}.BusyTimeoutOrDefault())
	assert.Equal(t, 100, SQLiteConfig{BusyTimeout: 100}.BusyTimeoutOrDefault())
}

func TestWorlds(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is empty", func(t *testing.T) {
		assert.False(t, WorldsExists(dir))
		worlds, err := LoadWorlds(dir)
		require.NoError(t, err)
		assert.Empty(t, worlds.Worlds)

		_, err = worlds.Get("onepiece")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no worlds configured")
	})

	t.Run("save and reload", func(t *testing.T) {
		worlds, err := LoadWorlds(dir)
		require.NoError(t, err)
		worlds.Add("onepiece", WorldEntry{Description: "Straw hats and friends"})
		worlds.Add("bleach", WorldEntry{Locale: "ja"})
		require.NoError(t, worlds.Save(dir))
		assert.True(t, WorldsExists(dir))

		reloaded, err := LoadWorlds(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"bleach", "onepiece"}, reloaded.Names())
		assert.True(t, reloaded.Exists("onepiece"))

		entry, err := reloaded.Get("onepiece")
		require.NoError(t, err)
		assert.Equal(t, "Straw hats and friends", entry.Description)
	})

	t.Run("unknown world lists available", func(t *testing.T) {
		worlds, err := LoadWorlds(dir)
		require.NoError(t, err)
		_, err = worlds.Get("naruto")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bleach, onepiece")
	})

	t.Run("remove", func(t *testing.T) {
		worlds, err := LoadWorlds(dir)
		require.NoError(t, err)
		worlds.Remove("bleach")
		assert.False(t, worlds.Exists("bleach"))
	})

	t.Run("corrupt file", func(t *testing.T) {
		bad := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(bad, DefaultConfigDir), 0755))
		require.NoError(t, os.WriteFile(WorldsFilePath(bad), []byte("worlds: [1, 2"), 0600))
		_, err := LoadWorlds(bad)
		require.Error(t, err)
	})
}
