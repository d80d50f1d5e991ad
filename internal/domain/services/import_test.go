package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-roster/internal/domain/entities"
	"github.com/ersonp/lore-roster/internal/domain/mocks"
	"github.com/ersonp/lore-roster/internal/infrastructure/parsers"
)

func TestImportService_Import_ValidCharacters(t *testing.T) {
	store := mocks.NewCharacterStore()
	service := NewImportService(store, nil)
	raws := []parsers.RawCharacter{
		{Name: "Monkey D. Luffy", Difficulty: "really easy"},
		{Name: "Apis", FillerStatus: "filler", Difficulty: "3", Arc: "Warship Island", Episode: "54"},
	}

	result, err := service.Import(context.Background(), world, raws, ImportOptions{OnConflict: ConflictSkip})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Errors)

	chars, err := store.ListCharacters(context.Background(), world)
	require.NoError(t, err)
	require.Len(t, chars, 2)
	assert.Equal(t, CharacterID(world, "Monkey D. Luffy"), chars[0].ID)
	assert.Equal(t, entities.DifficultyReallyEasy, chars[0].Difficulty)
	assert.Equal(t, entities.FillerCanon, chars[0].FillerStatus)
	assert.Equal(t, entities.FillerFiller, chars[1].FillerStatus)
	assert.Equal(t, entities.DifficultyMedium, chars[1].Difficulty)
	assert.Equal(t, 54, chars[1].Episode)
	assert.Equal(t, "apis", chars[1].NormalizedName)

	require.Len(t, store.Audit, 1)
	assert.Equal(t, entities.ActionImport, store.Audit[0].Action)
}

func TestImportService_Import_ValidationErrors(t *testing.T) {
	store := mocks.NewCharacterStore()
	service := NewImportService(store, nil)
	raws := []parsers.RawCharacter{
		{Name: "  ", LineNum: 2},
		{Name: "Nami", FillerStatus: "movie", LineNum: 3},
		{Name: "Zoro", Difficulty: "impossible", LineNum: 4},
		{Name: "Sanji", Ignored: "maybe", LineNum: 5},
		{Name: "Usopp", Chapter: "-1", LineNum: 6},
		{Name: "Chopper", Episode: "eighty", LineNum: 7},
		{Name: "Robin", LineNum: 8},
	}

	result, err := service.Import(context.Background(), world, raws, ImportOptions{OnConflict: ConflictSkip})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 6)

	fields := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		fields[i] = e.Field
	}
	assert.Equal(t, []string{"name", "filler_status", "difficulty", "ignored", "chapter", "episode"}, fields)
	assert.Equal(t, 3, result.Errors[1].Line)
	assert.Equal(t, "line 4: invalid difficulty \"impossible\" (valid: 0-5 or a label such as medium)", result.Errors[2].Error())
}

func TestImportService_Import_DuplicateNames(t *testing.T) {
	service := NewImportService(mocks.NewCharacterStore(), nil)
	raws := []parsers.RawCharacter{
		{Name: "Nami", LineNum: 1},
		{Name: "NAMI ", LineNum: 2},
		{Name: "Nami", ID: "nami-2", LineNum: 3},
	}

	result, err := service.Import(context.Background(), world, raws, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "first seen on line 1")
}

func TestImportService_Import_SkipExisting(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewCharacterStore()
	service := NewImportService(store, nil)
	raws := []parsers.RawCharacter{{Name: "Nami"}, {Name: "Usopp"}}

	_, err := service.Import(ctx, world, raws, ImportOptions{OnConflict: ConflictSkip})
	require.NoError(t, err)

	again := []parsers.RawCharacter{{Name: "nami", Description: "navigator"}, {Name: "Vivi"}}
	result, err := service.Import(ctx, world, again, ImportOptions{OnConflict: ConflictSkip})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	nami, err := store.FindCharacterByID(ctx, world, CharacterID(world, "Nami"))
	require.NoError(t, err)
	assert.Empty(t, nami.Description)
}

func TestImportService_Import_OverwriteKeepsUnsetRatings(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewCharacterStore()
	service := NewImportService(store, nil)

	_, err := service.Import(ctx, world, []parsers.RawCharacter{
		{Name: "Nami", Difficulty: "hard", Ignored: "yes"},
		{Name: "Usopp", Difficulty: "easy"},
	}, ImportOptions{OnConflict: ConflictOverwrite})
	require.NoError(t, err)

	original, err := store.FindCharacterByID(ctx, world, CharacterID(world, "Nami"))
	require.NoError(t, err)

	result, err := service.Import(ctx, world, []parsers.RawCharacter{
		{Name: "Nami", Description: "navigator"},
		{Name: "Usopp", Difficulty: "medium"},
	}, ImportOptions{OnConflict: ConflictOverwrite})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Skipped)

	nami, err := store.FindCharacterByID(ctx, world, CharacterID(world, "Nami"))
	require.NoError(t, err)
	assert.Equal(t, "navigator", nami.Description)
	assert.Equal(t, entities.DifficultyHard, nami.Difficulty)
	assert.True(t, nami.IsIgnored)
	assert.Equal(t, original.CreatedAt, nami.CreatedAt)

	usopp, err := store.FindCharacterByID(ctx, world, CharacterID(world, "Usopp"))
	require.NoError(t, err)
	assert.Equal(t, entities.DifficultyMedium, usopp.Difficulty)
}

func TestImportService_Import_DryRun(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewCharacterStore()
	service := NewImportService(store, nil)

	result, err := service.Import(ctx, world, []parsers.RawCharacter{{Name: "Nami"}}, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	count, err := store.CountCharacters(ctx, world)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, store.Audit)
}

func TestImportService_Import_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing world", func(t *testing.T) {
		service := NewImportService(mocks.NewCharacterStore(), nil)
		_, err := service.Import(ctx, " ", []parsers.RawCharacter{{Name: "Nami"}}, ImportOptions{})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("store failure", func(t *testing.T) {
		store := mocks.NewCharacterStore()
		store.Err = errors.New("locked")
		service := NewImportService(store, nil)
		_, err := service.Import(ctx, world, []parsers.RawCharacter{{Name: "Nami"}}, ImportOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked")
	})

	t.Run("nothing valid is not an error", func(t *testing.T) {
		service := NewImportService(mocks.NewCharacterStore(), nil)
		result, err := service.Import(ctx, world, []parsers.RawCharacter{{Name: ""}}, ImportOptions{})
		require.NoError(t, err)
		assert.Zero(t, result.Imported)
		assert.Len(t, result.Errors, 1)
	})
}

func TestCharacterID(t *testing.T) {
	assert.Equal(t, CharacterID(world, "Pérona"), CharacterID(world, " perona"))
	assert.NotEqual(t, CharacterID(world, "Nami"), CharacterID("bleach", "Nami"))
	assert.Len(t, CharacterID(world, "Nami"), 36)
}

func TestParseConflictStrategy(t *testing.T) {
	s, err := ParseConflictStrategy("Overwrite")
	require.NoError(t, err)
	assert.Equal(t, ConflictOverwrite, s)

	_, err = ParseConflictStrategy("merge")
	require.ErrorIs(t, err, ErrInvalidInput)
}
