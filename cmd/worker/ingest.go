package main

import (
	"github.com/spf13/cobra"

	"procfeed/internal/service"
)

type runFlags struct {
	output   string
	prefixes []string
	strict   bool
	persist  bool
}

func (f *runFlags) options() service.RunOptions {
	return service.RunOptions{
		Strict:          f.strict,
		Persist:         f.persist,
		PartyIDPrefixes: f.prefixes,
	}
}

func newIngestCommand(root *rootFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "ingest <url>",
		Short: "Fetch a procurement feed and normalize its elements",
		Long: `Fetch a procurement feed and normalize its elements.

Examples:
  procfeed ingest https://datosabiertos.gob.pe/ordenes.json
  procfeed ingest --strict --persist https://contratacionesabiertas.oece.gob.pe/api/v1/releases`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.service.Run(cmd.Context(), args[0], flags.options())
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)

			if flags.output != "" {
				return a.client.SaveResultJSON(report.Result, flags.output)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.strict, "strict", false, "only fetch from allowed government domains")
	cmd.Flags().BoolVar(&flags.persist, "persist", false, "upsert accepted entries into storage")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the full result as JSON to this file")
	cmd.Flags().StringSliceVar(&flags.prefixes, "party-prefix", nil, "party id-scheme prefixes to strip (default from config)")

	return cmd
}
