package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// fakeTx records SQL and COPY traffic. Embedding pgx.Tx panics on any
// method the pipeline is not supposed to touch.
type fakeTx struct {
	pgx.Tx

	execSQL    []string
	copyCalls  []copyCall
	copiedRows int64

	// failOnSQL makes Exec fail for statements containing the substring.
	failOnSQL string
	// failCopy makes CopyFrom fail.
	failCopy bool

	committed  bool
	rolledBack bool
}

type copyCall struct {
	table   string
	columns []string
	rows    [][]any
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execSQL = append(t.execSQL, sql)
	if t.failOnSQL != "" && strings.Contains(sql, t.failOnSQL) {
		return pgconn.CommandTag{}, fmt.Errorf("forced failure on %q", t.failOnSQL)
	}
	if strings.HasPrefix(sql, "INSERT INTO") {
		return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", t.copiedRows)), nil
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	if t.failCopy {
		return 0, fmt.Errorf("forced copy failure")
	}

	call := copyCall{
		table:   tableName.Sanitize(),
		columns: append([]string(nil), columnNames...),
	}
	for rowSrc.Next() {
		values, err := rowSrc.Values()
		if err != nil {
			return int64(len(call.rows)), err
		}
		call.rows = append(call.rows, values)
	}
	t.copyCalls = append(t.copyCalls, call)
	t.copiedRows += int64(len(call.rows))
	return int64(len(call.rows)), nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

// fakeSession hands out a fakeTx and counts Begin calls.
type fakeSession struct {
	tx         *fakeTx
	beginErr   error
	beginCount int
}

func (s *fakeSession) Begin(ctx context.Context) (pgx.Tx, error) {
	s.beginCount++
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.tx, nil
}

// fakeFileIngestor records IngestFile calls for Director tests.
type fakeFileIngestor struct {
	calls []pgingest.FileConfig
	rows  int64
	// failPaths makes IngestFile fail for paths containing any substring.
	failPaths []string
}

func (f *fakeFileIngestor) IngestFile(ctx context.Context, cfg pgingest.FileConfig) (int64, error) {
	f.calls = append(f.calls, cfg)
	for _, p := range f.failPaths {
		if strings.Contains(cfg.Path, p) {
			return 0, fmt.Errorf("ingest %q: %w", cfg.Path, pgingest.ErrStreamLoadFailed)
		}
	}
	return f.rows, nil
}
