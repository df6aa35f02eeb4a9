package services

import "errors"

// Dashboard service errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNoData          = errors.New("no data uploaded")

	// Sheet errors
	ErrUnknownSheet   = errors.New("unknown sheet")
	ErrSheetNotLoaded = errors.New("sheet not loaded")

	// Upload errors
	ErrNoFiles = errors.New("no files uploaded")

	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
