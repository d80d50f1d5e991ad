package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// JSONParser parses characters from a JSON array of objects.
type JSONParser struct{}

// jsonCharacter mirrors RawCharacter with fields that accept any scalar.
type jsonCharacter struct {
	ID           scalar `json:"id"`
	Name         scalar `json:"name"`
	Description  scalar `json:"description"`
	Image        scalar `json:"image"`
	FillerStatus scalar `json:"filler_status"`
	Difficulty   scalar `json:"difficulty"`
	Ignored      scalar `json:"ignored"`
	Arc          scalar `json:"arc"`
	Chapter      scalar `json:"chapter"`
	Episode      scalar `json:"episode"`
}

// Parse reads JSON from the reader and returns parsed characters.
func (p *JSONParser) Parse(r io.Reader) ([]RawCharacter, error) {
	var records []jsonCharacter

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	chars := make([]RawCharacter, len(records))
	for i, rec := range records {
		chars[i] = RawCharacter{
			ID:           string(rec.ID),
			Name:         string(rec.Name),
			Description:  string(rec.Description),
			Image:        string(rec.Image),
			FillerStatus: string(rec.FillerStatus),
			Difficulty:   string(rec.Difficulty),
			Ignored:      string(rec.Ignored),
			Arc:          string(rec.Arc),
			Chapter:      string(rec.Chapter),
			Episode:      string(rec.Episode),
			LineNum:      i + 1, // array index, 1-indexed
		}
	}

	return chars, nil
}

// scalar decodes a JSON string, number, bool or null into its text form.
type scalar string

func (s *scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = scalar(str)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected a scalar value, got %s", data)
	default:
		// numbers and booleans keep their literal text
		if _, err := strconv.ParseFloat(string(data), 64); err != nil && string(data) != "true" && string(data) != "false" {
			return fmt.Errorf("unexpected value %s", data)
		}
		*s = scalar(data)
	}
	return nil
}
