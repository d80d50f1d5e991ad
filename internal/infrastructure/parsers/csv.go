package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVParser parses characters from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed characters.
// Required column: name. Optional: id, description, image, filler_status,
// difficulty, ignored, arc, chapter, episode.
func (p *CSVParser) Parse(r io.Reader) ([]RawCharacter, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("reading CSV header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		colIndex[col] = i
	}

	if _, ok := colIndex["name"]; !ok {
		return nil, errors.New("missing required column: name")
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawCharacters.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawCharacter, error) {
	var chars []RawCharacter

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		chars = append(chars, RawCharacter{
			ID:           getColumn(record, colIndex, "id"),
			Name:         getColumn(record, colIndex, "name"),
			Description:  getColumn(record, colIndex, "description"),
			Image:        getColumn(record, colIndex, "image"),
			FillerStatus: getColumn(record, colIndex, "filler_status"),
			Difficulty:   getColumn(record, colIndex, "difficulty"),
			Ignored:      getColumn(record, colIndex, "ignored"),
			Arc:          getColumn(record, colIndex, "arc"),
			Chapter:      getColumn(record, colIndex, "chapter"),
			Episode:      getColumn(record, colIndex, "episode"),
			LineNum:      line,
		})
	}

	return chars, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
