package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgingest/internal/ingest"
	"github.com/vvka-141/pgingest/internal/tui/wizards"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// runInteractive drives the menu loop: pick an action, run it, show the
// outcome, and return to the menu until the user exits. A failed load is
// reported and the menu continues; only wizard errors abort the loop.
func runInteractive(cmd *cobra.Command) error {
	rt, err := buildRuntime(cmd)
	if err != nil {
		return err
	}

	defaults := wizards.Defaults{
		Schema:      rt.cfg.Schema,
		TablePrefix: pgingest.DefaultTablePrefix,
	}

	for {
		choice, err := wizards.Run(defaults)
		if err != nil {
			return err
		}
		if choice.Action == wizards.ActionQuit {
			return nil
		}

		if err := runChoice(rt, choice); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		}
	}
}

// runChoice executes one wizard selection on a fresh session.
func runChoice(rt *appRuntime, choice wizards.Choice) error {
	ctx, cancel := signalContext()
	defer cancel()

	session, err := newSession(ctx, rt)
	if err != nil {
		return err
	}
	defer session.Close()

	ingestor := ingest.NewIngestor(session, rt.logger, rt.reporter)

	if choice.Action == wizards.ActionIngestFile {
		table := choice.Table
		if table == "" {
			table = tableFromPath(choice.Path)
		}
		_, err := ingestor.IngestFile(ctx, pgingest.FileConfig{
			Path:      choice.Path,
			Schema:    choice.Schema,
			Table:     table,
			BatchSize: rt.cfg.BatchSize,
		})
		return err
	}

	director := ingest.NewDirector(ingestor, rt.logger)
	report, err := director.IngestDirectory(ctx, pgingest.DirectoryConfig{
		Path:        choice.Path,
		Schema:      choice.Schema,
		TablePrefix: choice.TablePrefix,
		BatchSize:   rt.cfg.BatchSize,
	})
	if err != nil {
		return err
	}
	return reportError(report)
}
