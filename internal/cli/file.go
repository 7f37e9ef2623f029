package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgingest/internal/ingest"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

var fileCmd = &cobra.Command{
	Use:   "file <csv_path>",
	Short: "Load one CSV file into a JSON-valued table",
	Long: `Load a single CSV file into PostgreSQL.

The file command:
1. Reads the header row and derives sanitized column names from it
2. Streams all rows into a session-scoped staging table in batches
3. Rewrites the staged rows as one JSON document per row into the
   destination table (single "data" column, json type)
4. Commits everything in one transaction; any failure rolls back and the
   destination table is left exactly as it was

The destination table is dropped and recreated on every run, so re-loading
a file replaces its table instead of appending.

Connection settings come from the environment (DB_HOST, DB_PORT, DB_NAME,
DB_USER, DB_PASSWORD), a .env file, or pgingest.yaml in the working
directory.

Examples:
  # Table name derived from the file name ("people")
  pgingest file ./exports/people.csv

  # Explicit destination
  pgingest file ./exports/people.csv --table staff --schema hr

  # Smaller COPY batches for a memory-constrained host
  pgingest file ./exports/people.csv --batch-size 1000`,
	Args: cobra.ExactArgs(1),
	RunE: runFile,
}

type fileFlagValues struct {
	table     string
	schema    string
	batchSize int
}

var fileFlags fileFlagValues

func init() {
	rootCmd.AddCommand(fileCmd)

	fileCmd.Flags().StringVarP(&fileFlags.table, "table", "t", "",
		"Destination table name (default: file name without extension)")
	fileCmd.Flags().StringVarP(&fileFlags.schema, "schema", "s", "",
		"Destination schema, created if missing (default: public, or $PGINGEST_SCHEMA)")
	fileCmd.Flags().IntVar(&fileFlags.batchSize, "batch-size", 0,
		"Rows staged per COPY round trip (default 10000, or $PGINGEST_BATCH_SIZE).\n"+
			"Affects peak memory only, never the loaded content")
}

func runFile(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	session, err := newSession(ctx, rt)
	if err != nil {
		return err
	}
	defer session.Close()

	ingestor := ingest.NewIngestor(session, rt.logger, rt.reporter)
	_, err = ingestor.IngestFile(ctx, fileConfigFromFlags(rt, args[0]))
	return err
}

func fileConfigFromFlags(rt *appRuntime, path string) pgingest.FileConfig {
	table := fileFlags.table
	if table == "" {
		table = tableFromPath(path)
	}

	schema := fileFlags.schema
	if schema == "" {
		schema = rt.cfg.Schema
	}

	batchSize := fileFlags.batchSize
	if batchSize == 0 {
		batchSize = rt.cfg.BatchSize
	}

	return pgingest.FileConfig{
		Path:      path,
		Schema:    schema,
		Table:     table,
		BatchSize: batchSize,
	}
}
