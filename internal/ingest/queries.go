package ingest

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// SQL builders for the staging and materialization phases. All identifiers
// pass through pgx.Identifier.Sanitize() so arbitrary sanitized-but-quoted
// names (including digit-leading column names) are safe.

func createSchemaSQL(schema string) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize())
}

func dropStagingSQL(staging string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{staging}.Sanitize())
}

// createStagingSQL builds the session temp table: one text column per
// sanitized header, in header order. Values round-trip byte for byte.
func createStagingSQL(staging string, columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = pgx.Identifier{col}.Sanitize() + " text"
	}
	return fmt.Sprintf("CREATE TEMP TABLE %s (%s)",
		pgx.Identifier{staging}.Sanitize(), strings.Join(defs, ", "))
}

func dropDestinationSQL(schema, table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{schema, table}.Sanitize())
}

// createDestinationSQL builds the durable output: a single json column
// holding one object per source row. json (not jsonb) keeps key order
// aligned with the staged column order.
func createDestinationSQL(schema, table string) string {
	return fmt.Sprintf("CREATE TABLE %s (data json)", pgx.Identifier{schema, table}.Sanitize())
}

// materializeSQL transforms every staging row into a JSON object keyed by
// the sanitized column names. Ordering follows the staging scan order,
// which is best-effort only.
func materializeSQL(schema, table, staging string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (data) SELECT row_to_json(t) FROM (SELECT * FROM %s) t",
		pgx.Identifier{schema, table}.Sanitize(),
		pgx.Identifier{staging}.Sanitize(),
	)
}
