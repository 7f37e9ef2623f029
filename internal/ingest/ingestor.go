// Package ingest implements the ingestion pipeline: a per-file state machine
// that stages CSV rows into a session temp table and materializes them as
// JSON documents, and a director that drives it across a directory.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vvka-141/pgingest/internal/db"
	"github.com/vvka-141/pgingest/internal/progress"
	"github.com/vvka-141/pgingest/internal/sanitize"
	"github.com/vvka-141/pgingest/internal/source"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// state tracks the per-file pipeline phase, mostly for diagnostics.
type state int

const (
	stateValidating state = iota
	stateSchemaPreparing
	stateStaging
	stateMaterializing
	stateCommitting
	stateDone
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateValidating:
		return "validating"
	case stateSchemaPreparing:
		return "preparing schema"
	case stateStaging:
		return "staging"
	case stateMaterializing:
		return "materializing"
	case stateCommitting:
		return "committing"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Ingestor loads single CSV files into JSON-valued destination tables.
//
// The Ingestor borrows a caller-owned session: it never opens or closes
// connections itself, so one session can serve a whole batch of files.
// Each file is one transaction; failure in any phase rolls back atomically
// and leaves the destination untouched.
type Ingestor struct {
	session   db.Beginner
	logger    pgingest.Logger
	reporter  progress.Reporter
	sanitizer *sanitize.Sanitizer

	// newRunToken generates the per-run staging suffix. Overridable in tests.
	newRunToken func() string
}

// NewIngestor creates an Ingestor.
//
// Panics if session or logger is nil. This is intentional fail-fast behavior
// to prevent cryptic nil pointer dereferences later. A nil reporter disables
// progress output.
func NewIngestor(session db.Beginner, logger pgingest.Logger, reporter progress.Reporter) *Ingestor {
	if session == nil {
		panic("session cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if reporter == nil {
		reporter = progress.Null{}
	}

	return &Ingestor{
		session:   session,
		logger:    logger,
		reporter:  reporter,
		sanitizer: sanitize.New(),
		newRunToken: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
}

// stagingName builds the session-scoped staging table name. The run token
// keeps concurrent or re-entrant runs on the same session from colliding.
func (ing *Ingestor) stagingName() string {
	return pgingest.StagingTablePrefix + ing.newRunToken()
}

// IngestFile runs the full pipeline for one file:
// validate → prepare schema → stage → materialize → commit.
// It returns the number of rows materialized into the destination.
func (ing *Ingestor) IngestFile(ctx context.Context, cfg pgingest.FileConfig) (rows int64, err error) {
	st := stateValidating
	defer func() {
		if err != nil {
			ing.logger.Error("ingest %q failed while %s: %v", cfg.Path, st, err)
		}
	}()

	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	schema := cfg.Schema
	if schema == "" {
		schema = pgingest.DefaultSchema
	}
	table := ing.sanitizer.TableName(cfg.Table)
	if strings.Trim(table, "_") == "" {
		return 0, fmt.Errorf("table name %q sanitizes to nothing usable: %w",
			cfg.Table, pgingest.ErrInvalidConfig)
	}

	// No store connection is touched before the file is known to exist.
	file, err := source.Open(cfg.Path)
	if err != nil {
		return 0, err
	}

	ing.logger.Verbose("Ingesting %q into %s.%s", cfg.Path, schema, table)

	st = stateSchemaPreparing
	tx, err := ing.session.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction for %q: %w", cfg.Path, err)
	}
	defer func() {
		if err != nil {
			// Rollback discards staged rows and any destination DDL.
			_ = tx.Rollback(ctx)
			st = stateFailed
		}
	}()

	if _, err = tx.Exec(ctx, createSchemaSQL(schema)); err != nil {
		return 0, fmt.Errorf("create schema %q: %v: %w", schema, err, pgingest.ErrSchemaConflict)
	}

	header, err := file.Header()
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, pgingest.ErrStreamLoadFailed)
	}
	columns := ing.sanitizer.ColumnNames(header)

	staging := ing.stagingName()
	if _, err = tx.Exec(ctx, dropStagingSQL(staging)); err != nil {
		return 0, fmt.Errorf("drop staging for %q: %v: %w", cfg.Path, err, pgingest.ErrSchemaConflict)
	}
	if _, err = tx.Exec(ctx, createStagingSQL(staging, columns)); err != nil {
		return 0, fmt.Errorf("create staging for %q: %v: %w", cfg.Path, err, pgingest.ErrSchemaConflict)
	}
	ing.logger.Verbose("Staging table %s with %d columns", staging, len(columns))

	st = stateStaging
	l := &loader{batchSize: cfg.EffectiveBatchSize(), reporter: ing.reporter}
	staged, err := l.load(ctx, tx, staging, columns, file)
	if err != nil {
		return 0, err
	}
	ing.logger.Verbose("Staged %d rows from %q", staged, cfg.Path)

	st = stateMaterializing
	if _, err = tx.Exec(ctx, dropDestinationSQL(schema, table)); err != nil {
		return 0, fmt.Errorf("drop destination %s.%s: %v: %w", schema, table, err, pgingest.ErrSchemaConflict)
	}
	if _, err = tx.Exec(ctx, createDestinationSQL(schema, table)); err != nil {
		return 0, fmt.Errorf("create destination %s.%s: %v: %w", schema, table, err, pgingest.ErrSchemaConflict)
	}

	tag, err := tx.Exec(ctx, materializeSQL(schema, table, staging))
	if err != nil {
		return 0, fmt.Errorf("materialize %q into %s.%s: %v: %w",
			cfg.Path, schema, table, err, pgingest.ErrTransformFailed)
	}
	rows = tag.RowsAffected()

	// The staging table is session-scoped; drop it eagerly so a long batch
	// does not accumulate one temp table per file.
	if _, err = tx.Exec(ctx, dropStagingSQL(staging)); err != nil {
		return 0, fmt.Errorf("drop staging for %q: %v: %w", cfg.Path, err, pgingest.ErrSchemaConflict)
	}

	st = stateCommitting
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %q into %s.%s: %w", cfg.Path, schema, table, err)
	}

	st = stateDone
	ing.logger.Info("✓ Loaded %d rows from %q into %s.%s", rows, cfg.Path, schema, table)
	return rows, nil
}
