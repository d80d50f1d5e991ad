package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		input    string
		expected Difficulty
		ok       bool
	}{
		{input: "", expected: DifficultyUnrated, ok: true},
		{input: "0", expected: DifficultyUnrated, ok: true},
		{input: "3", expected: DifficultyMedium, ok: true},
		{input: "5", expected: DifficultyReallyHard, ok: true},
		{input: "6", ok: false},
		{input: "-1", ok: false},
		{input: "medium", expected: DifficultyMedium, ok: true},
		{input: "Really Hard", expected: DifficultyReallyHard, ok: true},
		{input: "really-easy", expected: DifficultyReallyEasy, ok: true},
		{input: "really__hard", expected: DifficultyReallyHard, ok: true},
		{input: "impossible", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDifficulty(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestDifficulty_Rank(t *testing.T) {
	assert.Equal(t, 0, DifficultyUnrated.Rank())
	assert.Equal(t, 4, DifficultyHard.Rank())
	assert.Equal(t, 0, Difficulty(-3).Rank())
	assert.Equal(t, 0, Difficulty(42).Rank())
	assert.False(t, Difficulty(42).IsRated())
	assert.True(t, DifficultyReallyEasy.IsRated())
	assert.Equal(t, "really hard", DifficultyReallyHard.String())
	assert.Equal(t, "unrated", Difficulty(9).String())
	assert.True(t, DifficultyUnrated.IsValid())
	assert.True(t, MaxDifficulty.IsValid())
	assert.False(t, Difficulty(6).IsValid())
	assert.False(t, Difficulty(-1).IsValid())
}

func TestDifficulty_UnmarshalJSON(t *testing.T) {
	var payload struct {
		A Difficulty `json:"a"`
		B Difficulty `json:"b"`
		C Difficulty `json:"c"`
		D Difficulty `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a": 2, "b": "hard", "c": "5", "d": null}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, DifficultyEasy, payload.A)
	assert.Equal(t, DifficultyHard, payload.B)
	assert.Equal(t, DifficultyReallyHard, payload.C)
	assert.Equal(t, DifficultyUnrated, payload.D)

	var bad Difficulty
	require.Error(t, json.Unmarshal([]byte(`"legendary"`), &bad))
	require.Error(t, json.Unmarshal([]byte(`9`), &bad))
}

func TestDifficulties(t *testing.T) {
	all := Difficulties()
	require.Len(t, all, 6)
	assert.Equal(t, DifficultyUnrated, all[0])
	assert.Equal(t, DifficultyReallyHard, all[5])
}
