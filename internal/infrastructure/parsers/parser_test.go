package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []RawCharacter
	}{
		{
			name:  "single character",
			input: `[{"name": "Nami"}]`,
			expected: []RawCharacter{
				{Name: "Nami", LineNum: 1},
			},
		},
		{
			name:  "numeric difficulty",
			input: `[{"name": "Zoro", "difficulty": 2}, {"name": "Usopp", "difficulty": "hard"}]`,
			expected: []RawCharacter{
				{Name: "Zoro", Difficulty: "2", LineNum: 1},
				{Name: "Usopp", Difficulty: "hard", LineNum: 2},
			},
		},
		{
			name:  "nulls are empty",
			input: `[{"name": "Sanji", "difficulty": null, "arc": null}]`,
			expected: []RawCharacter{
				{Name: "Sanji", LineNum: 1},
			},
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: []RawCharacter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestJSONParser_Parse_AllFields(t *testing.T) {
	input := `[{
		"id": "char-1",
		"name": "Nico Robin",
		"description": "Archaeologist",
		"image": "https://example.com/robin.png",
		"filler_status": "canon",
		"difficulty": "medium",
		"ignored": true,
		"arc": "Alabasta",
		"chapter": 114,
		"episode": 67
	}]`

	parser := &JSONParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	c := result[0]
	assert.Equal(t, "char-1", c.ID)
	assert.Equal(t, "Nico Robin", c.Name)
	assert.Equal(t, "Archaeologist", c.Description)
	assert.Equal(t, "https://example.com/robin.png", c.Image)
	assert.Equal(t, "canon", c.FillerStatus)
	assert.Equal(t, "medium", c.Difficulty)
	assert.Equal(t, "true", c.Ignored)
	assert.Equal(t, "Alabasta", c.Arc)
	assert.Equal(t, "114", c.Chapter)
	assert.Equal(t, "67", c.Episode)
}

func TestJSONParser_Parse_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "not json"},
		{name: "object instead of array", input: `{"name": "Nami"}`},
		{name: "nested value", input: `[{"name": {"first": "Nami"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			_, err := parser.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestCSVParser_Parse_ValidInput(t *testing.T) {
	input := "name,difficulty,filler_status\n" +
		"Monkey D. Luffy,really easy,canon\n" +
		"Apis,,filler\n"

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, RawCharacter{Name: "Monkey D. Luffy", Difficulty: "really easy", FillerStatus: "canon", LineNum: 2}, result[0])
	assert.Equal(t, RawCharacter{Name: "Apis", FillerStatus: "filler", LineNum: 3}, result[1])
}

func TestCSVParser_Parse_AllColumns(t *testing.T) {
	input := "id,name,description,image,filler_status,difficulty,ignored,arc,chapter,episode\n" +
		"c1,Shiki,Golden Lion,shiki.png,filler-non-tv,5,yes,Strong World,0,0\n"

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)

	c := result[0]
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, "Shiki", c.Name)
	assert.Equal(t, "Golden Lion", c.Description)
	assert.Equal(t, "shiki.png", c.Image)
	assert.Equal(t, "filler-non-tv", c.FillerStatus)
	assert.Equal(t, "5", c.Difficulty)
	assert.Equal(t, "yes", c.Ignored)
	assert.Equal(t, "Strong World", c.Arc)
}

func TestCSVParser_Parse_HeaderNormalization(t *testing.T) {
	input := "\ufeff Name , Arc\nNami,Arlong Park\n"

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Nami", result[0].Name)
	assert.Equal(t, "Arlong Park", result[0].Arc)
}

func TestCSVParser_Parse_ShortRows(t *testing.T) {
	input := "name,arc,chapter\nNami\n"

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Nami", result[0].Name)
	assert.Empty(t, result[0].Arc)
}

func TestCSVParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "empty input", input: "", errMsg: "empty input"},
		{name: "missing name column", input: "id,arc\n1,East Blue\n", errMsg: "missing required column: name"},
		{name: "bad quoting", input: "name\n\"Nami\n", errMsg: "reading CSV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &CSVParser{}
			_, err := parser.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("json"))
	assert.IsType(t, &CSVParser{}, ForFormat("CSV"))
	assert.Nil(t, ForFormat("xml"))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("roster.json"))
	assert.IsType(t, &CSVParser{}, ForFile("data/Roster.CSV"))
	assert.Nil(t, ForFile("roster.txt"))
	assert.Nil(t, ForFile("roster"))
}
