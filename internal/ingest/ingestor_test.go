package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgingest/internal/logging"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestIngestor(session *fakeSession) *Ingestor {
	ing := NewIngestor(session, logging.NewNullLogger(), nil)
	ing.newRunToken = func() string { return "testrun" }
	return ing
}

func TestIngestFile_Success(t *testing.T) {
	path := writeCSV(t, "First Name,Age\nAnn,30\nBo,41\n")
	tx := &fakeTx{}
	session := &fakeSession{tx: tx}
	ing := newTestIngestor(session)

	rows, err := ing.IngestFile(context.Background(), pgingest.FileConfig{
		Path:   path,
		Schema: "public",
		Table:  "people",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)

	staging := `"_pgingest_staging_testrun"`
	require.Len(t, tx.execSQL, 7)
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "public"`, tx.execSQL[0])
	assert.Equal(t, "DROP TABLE IF EXISTS "+staging, tx.execSQL[1])
	assert.Equal(t, "CREATE TEMP TABLE "+staging+` ("first_name" text, "age" text)`, tx.execSQL[2])
	assert.Equal(t, `DROP TABLE IF EXISTS "public"."people"`, tx.execSQL[3])
	assert.Equal(t, `CREATE TABLE "public"."people" (data json)`, tx.execSQL[4])
	assert.Equal(t, `INSERT INTO "public"."people" (data) SELECT row_to_json(t) FROM (SELECT * FROM `+staging+`) t`, tx.execSQL[5])
	// Final drop of the staging table happens before commit.
	assert.Equal(t, "DROP TABLE IF EXISTS "+staging, tx.execSQL[6])

	require.Len(t, tx.copyCalls, 1)
	call := tx.copyCalls[0]
	assert.Equal(t, staging, call.table)
	assert.Equal(t, []string{"first_name", "age"}, call.columns)
	assert.Equal(t, [][]any{{"Ann", "30"}, {"Bo", "41"}}, call.rows)
}

func TestIngestFile_MaterializeStatement(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\n")
	tx := &fakeTx{}
	ing := newTestIngestor(&fakeSession{tx: tx})

	_, err := ing.IngestFile(context.Background(), pgingest.FileConfig{Path: path, Table: "t"})
	require.NoError(t, err)

	// The INSERT is routed through Exec too; it shows up between the
	// destination DDL and the staging drop.
	found := false
	for _, sql := range tx.execSQL {
		if sql == `INSERT INTO "public"."t" (data) SELECT row_to_json(t) FROM (SELECT * FROM "_pgingest_staging_testrun") t` {
			found = true
		}
	}
	assert.True(t, found, "materialize statement not executed: %v", tx.execSQL)
}

func TestIngestFile_MissingFileTouchesNoConnection(t *testing.T) {
	session := &fakeSession{tx: &fakeTx{}}
	ing := newTestIngestor(session)

	_, err := ing.IngestFile(context.Background(), pgingest.FileConfig{
		Path:  filepath.Join(t.TempDir(), "absent.csv"),
		Table: "people",
	})
	assert.ErrorIs(t, err, pgingest.ErrSourceNotFound)
	assert.Zero(t, session.beginCount, "no transaction may be opened for a missing file")
}

func TestIngestFile_InvalidConfig(t *testing.T) {
	session := &fakeSession{tx: &fakeTx{}}
	ing := newTestIngestor(session)

	_, err := ing.IngestFile(context.Background(), pgingest.FileConfig{})
	assert.ErrorIs(t, err, pgingest.ErrInvalidConfig)
	assert.Zero(t, session.beginCount)
}

func TestIngestFile_TableSanitizesToNothing(t *testing.T) {
	path := writeCSV(t, "a\n1\n")
	ing := newTestIngestor(&fakeSession{tx: &fakeTx{}})

	_, err := ing.IngestFile(context.Background(), pgingest.FileConfig{Path: path, Table: "!!!"})
	assert.ErrorIs(t, err, pgingest.ErrInvalidConfig)
}

func TestIngestFile_CopyFailureRollsBack(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\n")
	tx := &fakeTx{failCopy: true}
	ing := newTestIngestor(&fakeSession{tx: tx})

	_, err := ing.IngestFile(context.Background(), pgingest.FileConfig{Path: path, Table: "t"})
	assert.ErrorIs(t, err, pgingest.ErrStreamLoadFailed)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestIngestFile_SchemaDDLFailure(t *testing.T) {
	path := writeCSV(t, "a\n1\n")
	tx := &fakeTx{failOnSQL: "CREATE SCHEMA"}
	ing := newTestIngestor(&fakeSession{tx: tx})

	_, err := ing.IngestFile(context.Background(), pgingest.FileConfig{Path: path, Table: "t"})
	assert.ErrorIs(t, err, pgingest.ErrSchemaConflict)
	assert.True(t, tx.rolledBack)
}

func TestIngestFile_TransformFailure(t *testing.T) {
	path := writeCSV(t, "a\n1\n")
	tx := &fakeTx{failOnSQL: "INSERT INTO"}
	ing := newTestIngestor(&fakeSession{tx: tx})

	_, err := ing.IngestFile(context.Background(), pgingest.FileConfig{Path: path, Table: "t"})
	assert.ErrorIs(t, err, pgingest.ErrTransformFailed)
	assert.True(t, tx.rolledBack)
}

func TestIngestFile_MalformedRow(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\nragged\n")
	tx := &fakeTx{}
	ing := newTestIngestor(&fakeSession{tx: tx})

	_, err := ing.IngestFile(context.Background(), pgingest.FileConfig{Path: path, Table: "t"})
	assert.ErrorIs(t, err, pgingest.ErrStreamLoadFailed)
	assert.True(t, tx.rolledBack)
}

func TestIngestFile_BatchSizeInvariance(t *testing.T) {
	content := "a,b\n"
	for i := 0; i < 7; i++ {
		content += "x,y\n"
	}
	path := writeCSV(t, content)

	for _, size := range []int{1, 3, 7, 100} {
		tx := &fakeTx{}
		ing := newTestIngestor(&fakeSession{tx: tx})

		rows, err := ing.IngestFile(context.Background(), pgingest.FileConfig{
			Path: path, Table: "t", BatchSize: size,
		})
		require.NoError(t, err, "batch size %d", size)
		assert.Equal(t, int64(7), rows, "batch size %d", size)

		var copied int
		for _, call := range tx.copyCalls {
			assert.LessOrEqual(t, len(call.rows), size)
			copied += len(call.rows)
		}
		assert.Equal(t, 7, copied, "batch size %d", size)
	}
}

func TestIngestFile_ZeroRows(t *testing.T) {
	path := writeCSV(t, "a,b\n")
	tx := &fakeTx{}
	ing := newTestIngestor(&fakeSession{tx: tx})

	rows, err := ing.IngestFile(context.Background(), pgingest.FileConfig{Path: path, Table: "t"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.True(t, tx.committed)
	assert.Empty(t, tx.copyCalls)
}

func TestIngestFile_DuplicateHeadersDisambiguated(t *testing.T) {
	path := writeCSV(t, "Name,name\na,b\n")
	tx := &fakeTx{}
	ing := newTestIngestor(&fakeSession{tx: tx})

	_, err := ing.IngestFile(context.Background(), pgingest.FileConfig{Path: path, Table: "t"})
	require.NoError(t, err)

	require.Len(t, tx.copyCalls, 1)
	assert.Equal(t, []string{"name", "name_2"}, tx.copyCalls[0].columns)
}

func TestNewIngestor_NilDependenciesPanic(t *testing.T) {
	assert.Panics(t, func() { NewIngestor(nil, logging.NewNullLogger(), nil) })
	assert.Panics(t, func() { NewIngestor(&fakeSession{}, nil, nil) })
}
