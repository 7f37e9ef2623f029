package ingest_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgingest/internal/ingest"
	"github.com/vvka-141/pgingest/internal/logging"
	pgtesting "github.com/vvka-141/pgingest/internal/testing"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// testSchema creates a throwaway schema so concurrent tests never collide,
// and registers its teardown.
func testSchema(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	schema := "it_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	t.Cleanup(func() {
		_, err := pool.Exec(context.Background(),
			fmt.Sprintf(`DROP SCHEMA IF EXISTS "%s" CASCADE`, schema))
		if err != nil {
			t.Logf("Warning: failed to drop schema %s: %v", schema, err)
		}
	})
	return schema
}

func newIngestor(t *testing.T, pool *pgxpool.Pool) *ingest.Ingestor {
	t.Helper()

	conn, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	t.Cleanup(conn.Release)

	return ingest.NewIngestor(conn, logging.NewNullLogger(), nil)
}

func queryJSON(t *testing.T, pool *pgxpool.Pool, schema, table string) []string {
	t.Helper()

	sql := fmt.Sprintf(`SELECT data::text FROM "%s"."%s" ORDER BY data::text`, schema, table)
	rows, err := pool.Query(context.Background(), sql)
	require.NoError(t, err)
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var doc string
		require.NoError(t, rows.Scan(&doc))
		docs = append(docs, doc)
	}
	require.NoError(t, rows.Err())
	return docs
}

func TestIntegration_IngestFileRoundTrip(t *testing.T) {
	connString := pgtesting.RequireDatabase(t)
	pool := pgtesting.GetTestPool(t, connString)
	schema := testSchema(t, pool)

	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("First Name,Age\nAnn,30\nBo,41\n"), 0644))

	ing := newIngestor(t, pool)
	rows, err := ing.IngestFile(context.Background(), pgingest.FileConfig{
		Path:   path,
		Schema: schema,
		Table:  "people",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	// Every value is text and key order follows the header order.
	docs := queryJSON(t, pool, schema, "people")
	assert.Equal(t, []string{
		`{"first_name":"Ann","age":"30"}`,
		`{"first_name":"Bo","age":"41"}`,
	}, docs)

	// No staging table survives the run.
	var leftovers int
	err = pool.QueryRow(context.Background(),
		`SELECT count(*) FROM information_schema.tables WHERE table_name LIKE $1`,
		pgingest.StagingTablePrefix+"%").Scan(&leftovers)
	require.NoError(t, err)
	assert.Zero(t, leftovers)
}

func TestIntegration_RerunReplacesDestination(t *testing.T) {
	connString := pgtesting.RequireDatabase(t)
	pool := pgtesting.GetTestPool(t, connString)
	schema := testSchema(t, pool)

	dir := t.TempDir()
	path := filepath.Join(dir, "items.csv")
	require.NoError(t, os.WriteFile(path, []byte("sku,qty\na,1\nb,2\nc,3\n"), 0644))

	ing := newIngestor(t, pool)
	cfg := pgingest.FileConfig{Path: path, Schema: schema, Table: "items"}

	_, err := ing.IngestFile(context.Background(), cfg)
	require.NoError(t, err)

	// Shrink the file and re-run. The destination must reflect only the
	// second run, not an accumulation.
	require.NoError(t, os.WriteFile(path, []byte("sku,qty\nz,9\n"), 0644))
	rows, err := ing.IngestFile(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	docs := queryJSON(t, pool, schema, "items")
	assert.Equal(t, []string{`{"sku":"z","qty":"9"}`}, docs)
}

func TestIntegration_FailedIngestLeavesNoTrace(t *testing.T) {
	connString := pgtesting.RequireDatabase(t)
	pool := pgtesting.GetTestPool(t, connString)
	schema := testSchema(t, pool)

	// A ragged row fails the load mid-stream. Rollback must erase the
	// schema DDL and staged rows and never create the destination.
	path := filepath.Join(t.TempDir(), "broken.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\nragged\n"), 0644))

	ing := newIngestor(t, pool)
	_, err := ing.IngestFile(context.Background(), pgingest.FileConfig{
		Path:   path,
		Schema: schema,
		Table:  "broken",
	})
	require.ErrorIs(t, err, pgingest.ErrStreamLoadFailed)

	var exists bool
	err = pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables
		 WHERE table_schema = $1 AND table_name = 'broken')`, schema).Scan(&exists)
	require.NoError(t, err)
	assert.False(t, exists, "failed ingest must not leave a destination table")
}

func TestIntegration_BatchSizeDoesNotChangeResult(t *testing.T) {
	connString := pgtesting.RequireDatabase(t)
	pool := pgtesting.GetTestPool(t, connString)
	schema := testSchema(t, pool)

	var sb strings.Builder
	sb.WriteString("n\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "%d\n", i)
	}
	path := filepath.Join(t.TempDir(), "numbers.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))

	ing := newIngestor(t, pool)

	var reference []string
	for _, size := range []int{1, 7, 25, 10000} {
		rows, err := ing.IngestFile(context.Background(), pgingest.FileConfig{
			Path:      path,
			Schema:    schema,
			Table:     "numbers",
			BatchSize: size,
		})
		require.NoError(t, err, "batch size %d", size)
		assert.Equal(t, int64(25), rows, "batch size %d", size)

		docs := queryJSON(t, pool, schema, "numbers")
		if reference == nil {
			reference = docs
		} else {
			assert.Equal(t, reference, docs, "batch size %d", size)
		}
	}
}

func TestIntegration_DirectoryBatchIsolation(t *testing.T) {
	connString := pgtesting.RequireDatabase(t)
	pool := pgtesting.GetTestPool(t, connString)
	schema := testSchema(t, pool)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Orders.csv"),
		[]byte("id,total\n1,10\n2,20\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "customers.CSV"),
		[]byte("name\nAnn\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"),
		[]byte("a,b\nragged\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("not a csv"), 0644))

	ing := newIngestor(t, pool)
	director := ingest.NewDirector(ing, logging.NewNullLogger())

	report, err := director.IngestDirectory(context.Background(), pgingest.DirectoryConfig{
		Path:        dir,
		Schema:      schema,
		TablePrefix: "data_",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total())
	assert.Equal(t, 2, report.Succeeded)
	assert.True(t, report.OK())

	docs := queryJSON(t, pool, schema, "data_orders")
	assert.Len(t, docs, 2)
	docs = queryJSON(t, pool, schema, "data_customers")
	assert.Equal(t, []string{`{"name":"Ann"}`}, docs)

	// The broken file's table must not exist.
	var exists bool
	err = pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables
		 WHERE table_schema = $1 AND table_name = 'data_broken')`, schema).Scan(&exists)
	require.NoError(t, err)
	assert.False(t, exists)
}
