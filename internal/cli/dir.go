package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgingest/internal/ingest"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

var dirCmd = &cobra.Command{
	Use:   "dir <directory>",
	Short: "Load every CSV file in a directory",
	Long: `Load every CSV file in a directory into PostgreSQL, one table per file.

Discovery looks only at the directory's immediate entries; nested
directories are skipped and the .csv extension matches case-insensitively.
Each file loads in its own transaction, so one broken file never blocks the
rest. The run succeeds when at least one file loads; the summary reports
the tally either way.

Destination tables are named <prefix><file name> (lowercased, sanitized).
The default prefix is "data_"; use --no-prefix for bare file names.

Examples:
  # exports/people.csv -> public.data_people, exports/Orders.CSV -> public.data_orders
  pgingest dir ./exports

  # Bare table names in a dedicated schema
  pgingest dir ./exports --no-prefix --schema imports

  # Custom prefix
  pgingest dir ./exports --prefix raw_`,
	Args: cobra.ExactArgs(1),
	RunE: runDir,
}

type dirFlagValues struct {
	prefix    string
	noPrefix  bool
	schema    string
	batchSize int
}

var dirFlags dirFlagValues

func init() {
	rootCmd.AddCommand(dirCmd)

	dirCmd.Flags().StringVar(&dirFlags.prefix, "prefix", pgingest.DefaultTablePrefix,
		"Prefix prepended to each destination table name")
	dirCmd.Flags().BoolVar(&dirFlags.noPrefix, "no-prefix", false,
		"Use bare file names as table names (overrides --prefix)")
	dirCmd.Flags().StringVarP(&dirFlags.schema, "schema", "s", "",
		"Destination schema, created if missing (default: public, or $PGINGEST_SCHEMA)")
	dirCmd.Flags().IntVar(&dirFlags.batchSize, "batch-size", 0,
		"Rows staged per COPY round trip (default 10000, or $PGINGEST_BATCH_SIZE)")
}

func runDir(cmd *cobra.Command, args []string) error {
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
	director := ingest.NewDirector(ingestor, rt.logger)

	report, err := director.IngestDirectory(ctx, dirConfigFromFlags(rt, args[0]))
	if err != nil {
		return err
	}
	return reportError(report)
}

func dirConfigFromFlags(rt *appRuntime, path string) pgingest.DirectoryConfig {
	prefix := dirFlags.prefix
	if dirFlags.noPrefix {
		prefix = ""
	}

	schema := dirFlags.schema
	if schema == "" {
		schema = rt.cfg.Schema
	}

	batchSize := dirFlags.batchSize
	if batchSize == 0 {
		batchSize = rt.cfg.BatchSize
	}

	return pgingest.DirectoryConfig{
		Path:        path,
		Schema:      schema,
		TablePrefix: prefix,
		BatchSize:   batchSize,
	}
}

// reportError converts a batch report into the command result: nil while at
// least one file loaded, otherwise the combined per-file failures.
func reportError(report *pgingest.BatchReport) error {
	if report.OK() {
		return nil
	}

	var errs []error
	for _, res := range report.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return fmt.Errorf("no files were loaded: %w", errors.Join(errs...))
}
