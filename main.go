// main.go
//
// Entry point for the Capsle daily character server.
// Responsibilities:
//   - Build the cobra command tree (serve, roster, today, version).
//   - Configure zerolog from LOG_LEVEL / LOG_FORMAT before any command runs.
//
// Running the binary without a subcommand starts the server.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "capsle",
		Short:         "Daily guess-the-character game server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(serveCmd())
	root.AddCommand(rosterCmd())
	root.AddCommand(todayCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		logFatal(err)
		os.Exit(1)
	}
}
