package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgingest/internal/tui"
)

const asciiLogo = `
            _                     _
  _ __  __ _(_)_ _  __ _ ___ ___| |_
 | '_ \/ _` + "`" + ` | | ' \/ _` + "`" + ` / -_|_-<  _|
 | .__/\__, |_|_||_\__, \___/__/\__|
 |_|   |___/       |___/`

var rootCmd = &cobra.Command{
	Use:   "pgingest",
	Short: "Bulk CSV loader for PostgreSQL",
	Long: asciiLogo + `

pgingest normalizes delimited files into PostgreSQL: every row of a CSV file
becomes one JSON document in a single-column table, with header-derived keys
and all values kept as opaque text. Point it at a file or a whole directory;
each file loads atomically into its own table.

Run without a subcommand on a terminal to use the interactive menu.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  12 - Source file or directory not found
  13 - Streaming load failed
  14 - JSON materialization failed`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tui.IsInteractive() {
			return runInteractive(cmd)
		}
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for pgingest")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}
