package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Ingest every enabled source from the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.close()

			reports, err := a.service.SyncAll(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0

			for _, r := range reports {
				fmt.Fprintf(out, "### %s\n\n", r.Source)

				if !r.Succeeded() {
					failed++

					fmt.Fprintf(out, "failed: %s\n\n", r.Error)

					continue
				}

				printReport(out, r.Run)
				fmt.Fprintln(out)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d sources failed", failed, len(reports))
			}

			return nil
		},
	}
}
