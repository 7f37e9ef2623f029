package pgingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectionConfig contains PostgreSQL connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AppName is reported as application_name to the server.
	AppName string

	// ConnectTimeout bounds the initial connection attempt. Zero means the
	// driver default.
	ConnectTimeout time.Duration
}

// Validate checks if the ConnectionConfig has all required fields.
// It returns a multi-error if multiple validation failures occur.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Host == "" {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range: %w", c.Port, ErrInvalidConfig))
	}
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database is required: %w", ErrInvalidConfig))
	}
	if c.Username == "" {
		errs = append(errs, fmt.Errorf("username is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// Connector abstracts connection pool establishment so callers do not depend
// on a concrete connector implementation.
type Connector interface {
	// Connect establishes a connection pool to the configured database.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// FileConfig contains all parameters needed to ingest a single CSV file.
type FileConfig struct {
	// Path is the source CSV file.
	Path string

	// Schema is the destination schema (created if missing).
	Schema string

	// Table is the destination table name. Sanitized before use.
	Table string

	// BatchSize is the number of rows staged per COPY round trip.
	// Zero means DefaultBatchSize.
	BatchSize int
}

// Validate checks if the FileConfig has all required fields and valid values.
func (c *FileConfig) Validate() error {
	var errs []error

	if c.Path == "" {
		errs = append(errs, fmt.Errorf("source path is required: %w", ErrInvalidConfig))
	}
	if c.Table == "" {
		errs = append(errs, fmt.Errorf("destination table is required: %w", ErrInvalidConfig))
	}
	if c.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch size cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// EffectiveBatchSize returns BatchSize, or DefaultBatchSize when unset.
func (c *FileConfig) EffectiveBatchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// DirectoryConfig contains all parameters needed to ingest every CSV file in
// a directory.
type DirectoryConfig struct {
	// Path is the directory to scan. Immediate entries only, no recursion.
	Path string

	// Schema is the destination schema shared by all files.
	Schema string

	// TablePrefix is prepended to each file's base name to form the
	// destination table name. Empty prefix uses the bare base name.
	TablePrefix string

	// BatchSize is forwarded to each per-file ingestion.
	BatchSize int
}

// Validate checks if the DirectoryConfig has all required fields.
func (c *DirectoryConfig) Validate() error {
	var errs []error

	if c.Path == "" {
		errs = append(errs, fmt.Errorf("directory path is required: %w", ErrInvalidConfig))
	}
	if c.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch size cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// FileResult reports the outcome of a single file ingestion within a batch.
type FileResult struct {
	// Path is the source file.
	Path string

	// Table is the destination table the file was loaded into.
	Table string

	// Rows is the number of rows materialized into the destination.
	Rows int64

	// Err is nil on success.
	Err error
}

// BatchReport summarizes a directory ingestion run.
type BatchReport struct {
	// Results holds one entry per discovered file, in processing order.
	Results []FileResult

	// Succeeded is the number of files ingested without error.
	Succeeded int
}

// Total returns the number of files attempted.
func (r *BatchReport) Total() int {
	return len(r.Results)
}

// OK reports overall batch success: at least one file succeeded.
func (r *BatchReport) OK() bool {
	return r.Succeeded > 0
}
