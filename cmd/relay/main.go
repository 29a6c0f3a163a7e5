// relay is a command-line IRC client built on the relay engine
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "relay is a small IRC client",
	Long: `relay connects to one IRC server, joins the configured channels and prints
the traffic, optionally recording it to a local transcript database.

A default configuration is written to config/relay.toml on first run.`,
	Version:       Version + " (" + Commit + ")",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/relay.toml", "Configuration file (.toml, .yaml or .yml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
