package main

// Default limits for CLI commands.
const (
	DefaultSearchLimit = 10
	DefaultExportLimit = 10000
)

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}
