package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func coverageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coverage SERIAL [SERIAL...]",
		Short: "Print coverage summaries for the given serial numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
			defer cancel()

			records, err := client.CoverageSummaryBySerialNumbers(ctx, args)
			if err != nil {
				return fmt.Errorf("coverage query: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}
}
