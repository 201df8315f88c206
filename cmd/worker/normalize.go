package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errInputRequired = errors.New("--input is required")

func newNormalizeCommand(root *rootFlags) *cobra.Command {
	flags := &runFlags{}

	var input string

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize a payload stored on disk without any network access",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input == "" {
				return errInputRequired
			}

			a, err := newApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.service.RunFile(cmd.Context(), input, flags.options())
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

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON payload to normalize")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the full result as JSON to this file")
	cmd.Flags().BoolVar(&flags.persist, "persist", false, "upsert accepted entries into storage")
	cmd.Flags().StringSliceVar(&flags.prefixes, "party-prefix", nil, "party id-scheme prefixes to strip (default from config)")

	return cmd
}
