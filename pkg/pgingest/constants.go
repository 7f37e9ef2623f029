package pgingest

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Ingestion completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitSourceNotFound  = 12 // Source file or directory not found
	ExitLoadFailed      = 13 // Streaming load into the staging table failed
	ExitTransformFailed = 14 // JSON materialization failed
)

const (
	// DefaultBatchSize is the number of rows staged per COPY round trip.
	// Chunking bounds peak memory; it has no effect on the final table content.
	DefaultBatchSize = 10000

	// DefaultSchema is the destination schema when none is configured.
	DefaultSchema = "public"

	// DefaultTablePrefix is prepended to file base names in directory mode
	// unless the caller opts out.
	DefaultTablePrefix = "data_"

	// SourceExtension is the file suffix (case-insensitive) recognized by
	// directory discovery.
	SourceExtension = ".csv"

	// StagingTablePrefix prefixes the session-scoped staging table name.
	// The full name carries a per-run token to keep re-entrant runs safe.
	StagingTablePrefix = "_pgingest_staging_"

	// MaxIdentifierLength is the PostgreSQL identifier limit in bytes.
	// Sanitized names longer than this are truncated by the server, which
	// can silently collide; the sanitizer enforces the limit itself.
	MaxIdentifierLength = 63
)
