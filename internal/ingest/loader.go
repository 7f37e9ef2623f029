package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/pgingest/internal/db"
	"github.com/vvka-141/pgingest/internal/progress"
	"github.com/vvka-141/pgingest/internal/source"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// loader streams a source file into the staging table in fixed-size row
// batches. Only one batch is resident at a time; total content is
// independent of the batch size.
type loader struct {
	batchSize int
	reporter  progress.Reporter
}

// load reads the file in batches and pushes each one through COPY, binding
// fields positionally to the sanitized column names. The raw header names
// are never consulted again after sanitization.
//
// Any read or COPY error aborts the load; rows staged by earlier batches are
// discarded when the enclosing transaction rolls back.
func (l *loader) load(ctx context.Context, q db.Querier, staging string, columns []string, f *source.File) (int64, error) {
	total, err := f.EstimateRows()
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, pgingest.ErrStreamLoadFailed)
	}

	batches, err := f.Batches(l.batchSize)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, pgingest.ErrStreamLoadFailed)
	}
	defer batches.Close()

	l.reporter.Start(filepath.Base(f.Path), total)

	var staged int64
	for {
		batch, err := batches.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return staged, fmt.Errorf("read %q after %d rows: %v: %w",
				f.Path, staged, err, pgingest.ErrStreamLoadFailed)
		}

		rows := make([][]any, len(batch))
		for i, record := range batch {
			row := make([]any, len(record))
			for j, field := range record {
				row[j] = field
			}
			rows[i] = row
		}

		n, err := q.CopyFrom(ctx, pgx.Identifier{staging}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return staged, fmt.Errorf("copy %q into staging after %d rows: %v: %w",
				f.Path, staged, err, pgingest.ErrStreamLoadFailed)
		}

		staged += n
		l.reporter.Advance(int64(len(batch)))
	}

	l.reporter.Done()
	return staged, nil
}
