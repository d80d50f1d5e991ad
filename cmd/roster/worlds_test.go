package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-roster/internal/domain/entities"
	"github.com/ersonp/lore-roster/internal/infrastructure/config"
)

func TestCreateWorld(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	initialized, err := createWorld(ctx, tmpDir, "One Piece", config.WorldEntry{Description: "Grand Line"})
	require.NoError(t, err)
	assert.True(t, initialized)
	assert.True(t, config.Exists(tmpDir))

	_, err = os.Stat(config.SQLitePathForWorld(tmpDir, "One Piece"))
	require.NoError(t, err, "world database should exist")

	worlds, err := config.LoadWorlds(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "Grand Line", worlds.Worlds["One Piece"].Description)

	t.Run("second world reuses config", func(t *testing.T) {
		initialized, err := createWorld(ctx, tmpDir, "bleach", config.WorldEntry{Locale: "ja"})
		require.NoError(t, err)
		assert.False(t, initialized)

		worlds, err := config.LoadWorlds(tmpDir)
		require.NoError(t, err)
		assert.Equal(t, []string{"One Piece", "bleach"}, worlds.Names())
		assert.Equal(t, "ja", worlds.Worlds["bleach"].Locale)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := createWorld(ctx, tmpDir, "bleach", config.WorldEntry{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("invalid locale", func(t *testing.T) {
		_, err := createWorld(ctx, tmpDir, "naruto", config.WorldEntry{Locale: "not a locale!"})
		require.Error(t, err)
		assert.False(t, mustLoadWorlds(t, tmpDir).Exists("naruto"))
	})
}

func TestDeleteWorld(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	_, err := createWorld(ctx, tmpDir, "empty", config.WorldEntry{})
	require.NoError(t, err)
	_, err = createWorld(ctx, tmpDir, "full", config.WorldEntry{})
	require.NoError(t, err)

	cfg, err := config.Load(tmpDir)
	require.NoError(t, err)
	store, err := openStore(ctx, cfg, tmpDir, "full")
	require.NoError(t, err)
	require.NoError(t, store.SaveCharacters(ctx, []entities.Character{
		{ID: "1", WorldID: "full", Name: "Nami", FillerStatus: entities.FillerCanon},
	}))
	require.NoError(t, store.Close())

	t.Run("empty world", func(t *testing.T) {
		require.NoError(t, deleteWorld(ctx, tmpDir, "empty", false))
		assert.False(t, mustLoadWorlds(t, tmpDir).Exists("empty"))
		_, err := os.Stat(config.WorldDir(tmpDir, "empty"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("world with characters needs force", func(t *testing.T) {
		err := deleteWorld(ctx, tmpDir, "full", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "contains 1 characters")
		assert.True(t, mustLoadWorlds(t, tmpDir).Exists("full"))

		require.NoError(t, deleteWorld(ctx, tmpDir, "full", true))
		assert.False(t, mustLoadWorlds(t, tmpDir).Exists("full"))
	})

	t.Run("unknown world", func(t *testing.T) {
		err := deleteWorld(ctx, tmpDir, "missing", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestPrintWorlds(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		printWorlds(&buf, &config.WorldsConfig{})
		assert.Contains(t, buf.String(), "No worlds configured.")
	})

	t.Run("sorted with locale placeholder", func(t *testing.T) {
		worlds := &config.WorldsConfig{}
		worlds.Add("zeta", config.WorldEntry{Description: "last"})
		worlds.Add("alpha", config.WorldEntry{Locale: "fr"})

		var buf bytes.Buffer
		printWorlds(&buf, worlds)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[2], "alpha"))
		assert.Contains(t, lines[2], "fr")
		assert.True(t, strings.HasPrefix(lines[3], "zeta"))
		assert.Contains(t, lines[3], " - ")
	})
}

func TestRootCmd_WorldFromEnv(t *testing.T) {
	t.Cleanup(func() { globalWorld = "" })
	t.Setenv("ROSTER_WORLD", "onepiece")

	newRootCmd()
	assert.Equal(t, "onepiece", globalWorld)
}

func TestWorldLocale(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Locale = "de"

	assert.Equal(t, "de", worldLocale(cfg, &config.WorldEntry{}).String())
	assert.Equal(t, "ja", worldLocale(cfg, &config.WorldEntry{Locale: "ja"}).String())
	assert.Equal(t, "de", worldLocale(cfg, nil).String())
}

func TestFormatDetails(t *testing.T) {
	assert.Equal(t, "difficulty=hard from=unrated", formatDetails(map[string]any{"from": "unrated", "difficulty": "hard"}))
	assert.Empty(t, formatDetails(nil))
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, []entities.AuditEntry{
		{Action: entities.ActionRate, CharacterID: "zoro", Details: map[string]any{"difficulty": "easy"}, CreatedAt: time.Now()},
	})
	assert.Contains(t, buf.String(), "rate")
	assert.Contains(t, buf.String(), "zoro")
	assert.Contains(t, buf.String(), "difficulty=easy")

	buf.Reset()
	printHistory(&buf, nil)
	assert.Equal(t, "No history.\n", buf.String())
}

func TestHistoryCmd_Args(t *testing.T) {
	cmd := newHistoryCmd()
	assert.Contains(t, cmd.Long, entities.ActionUnignore)
	require.NoError(t, cmd.Args(cmd, []string{"zoro"}))
	require.Error(t, cmd.Args(cmd, nil))

	require.NoError(t, cmd.Flags().Set("action", entities.ActionRate))
	require.NoError(t, cmd.Args(cmd, nil))
	require.Error(t, cmd.Args(cmd, []string{"zoro"}))
}

func TestRateCmd_ListsDifficulties(t *testing.T) {
	cmd := newRateCmd()
	assert.Contains(t, cmd.Long, "0 to 5")
	assert.Contains(t, cmd.Long, "really-hard")
}

func TestConfirmAction(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, confirmAction(strings.NewReader(tt.input), &out, "Delete?"), "input %q", tt.input)
		assert.Equal(t, "Delete? [y/N]: ", out.String())
	}
}

func mustLoadWorlds(t *testing.T, basePath string) *config.WorldsConfig {
	t.Helper()
	worlds, err := config.LoadWorlds(basePath)
	require.NoError(t, err)
	return worlds
}
