package pgingest

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := ingestor.IngestFile(ctx, cfg)
//	if errors.Is(err, pgingest.ErrSourceNotFound) {
//	    // Handle missing input file
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceNotFound indicates the source file or directory does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrNotADirectory indicates the directory-mode path is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNoSourceFiles indicates directory discovery matched zero CSV files.
	ErrNoSourceFiles = errors.New("no CSV files found")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSchemaConflict indicates DDL for the schema, staging, or destination
	// table failed (permissions, invalid identifier, concurrent mutation).
	ErrSchemaConflict = errors.New("schema preparation failed")

	// ErrStreamLoadFailed indicates the batched COPY into staging failed
	// (malformed row, encoding mismatch, transport error).
	ErrStreamLoadFailed = errors.New("stream load failed")

	// ErrTransformFailed indicates the JSON materialization statement failed.
	ErrTransformFailed = errors.New("transform failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrSourceNotFound),
		errors.Is(err, ErrNotADirectory),
		errors.Is(err, ErrNoSourceFiles):
		return ExitSourceNotFound
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrSchemaConflict):
		return ExitConfigError
	case errors.Is(err, ErrStreamLoadFailed):
		return ExitLoadFailed
	case errors.Is(err, ErrTransformFailed):
		return ExitTransformFailed
	}

	// Check for common connection error patterns
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
