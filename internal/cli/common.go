package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgingest/internal/config"
	"github.com/vvka-141/pgingest/internal/db"
	"github.com/vvka-141/pgingest/internal/logging"
	"github.com/vvka-141/pgingest/internal/progress"
	"github.com/vvka-141/pgingest/internal/tui"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// appRuntime bundles the resolved configuration and the output plumbing shared
// by every command.
type appRuntime struct {
	cfg      *config.Config
	logger   pgingest.Logger
	reporter progress.Reporter
	verbose  bool
}

// buildRuntime folds .env into the environment, resolves the layered
// configuration, and picks output implementations for the current terminal.
func buildRuntime(cmd *cobra.Command) (*appRuntime, error) {
	_ = godotenv.Load()

	verbose := getVerboseFlag(cmd)

	cfg, err := config.Resolve(".")
	if err != nil {
		return nil, err
	}

	var reporter progress.Reporter = progress.Null{}
	if tui.IsInteractive() {
		reporter = progress.NewBar(os.Stderr)
	}

	return &appRuntime{
		cfg:      cfg,
		logger:   logging.NewConsoleLogger(verbose),
		reporter: reporter,
		verbose:  verbose,
	}, nil
}

// newSession opens the run's database session. The caller owns it and must
// Close it.
func newSession(ctx context.Context, rt *appRuntime) (*db.Session, error) {
	connector := db.NewStandardConnector(&rt.cfg.Connection)
	return db.Connect(ctx, connector, &rt.cfg.Connection)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so an
// in-flight transaction rolls back instead of hanging.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// tableFromPath derives the default destination table name from a file path:
// the lowercased base name without its extension. Sanitization happens later
// in the pipeline.
func tableFromPath(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
