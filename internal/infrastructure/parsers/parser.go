// Package parsers provides parsers for importing characters from various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// RawCharacter is a character record as read from a file, before validation.
// Every value is kept as text; the import service decides what is valid.
type RawCharacter struct {
	ID           string
	Name         string
	Description  string
	Image        string
	FillerStatus string
	Difficulty   string
	Ignored      string
	Arc          string
	Chapter      string
	Episode      string
	LineNum      int // Line number in source file (set by parser)
}

// Parser defines the interface for parsing characters from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawCharacter, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	return ForFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}
