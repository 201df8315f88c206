// Package main provides the procfeed command: ingest procurement open-data feeds,
// normalize them and optionally persist the accepted entries.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "procfeed",
		Short:         "Ingest and normalize electronic-catalog procurement open data",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to YAML configuration")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "override logging.format (text, json)")

	cmd.AddCommand(newIngestCommand(flags))
	cmd.AddCommand(newNormalizeCommand(flags))
	cmd.AddCommand(newSyncCommand(flags))
	cmd.AddCommand(newServeCommand(flags))

	return cmd
}
