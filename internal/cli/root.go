// Package cli holds the cobra command tree: a root "spatio" command
// with "serve" and "version" subcommands, grounded on
// ValentinKolb-dKV's cmd/root.go hierarchical layout.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

// RootCmd is the base command when spatio is run without a subcommand.
var RootCmd = &cobra.Command{
	Use:   "spatio",
	Short: "geospatial key-value server",
	Long: `spatio is a single-node, in-memory geospatial key-value server.
It organizes GeoJSON objects into named collections indexed by a
dynamic R-tree, and speaks a Redis-compatible wire protocol.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of spatio",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("spatio v%s\n", version)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. Called once by main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
