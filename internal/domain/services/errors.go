package services

import "errors"

// Sentinel errors returned by the roster and import services.
var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidInput      = errors.New("invalid input")
)
