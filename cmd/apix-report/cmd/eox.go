package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apixtools/cisco-apix/pkg/export"
)

func eoxCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "eox PID [PID...]",
		Short: "Write an end-of-life CSV report for the given product IDs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
			defer cancel()

			records, err := client.EoXByProductID(ctx, args)
			if err != nil {
				return fmt.Errorf("eox query: %w", err)
			}

			fhand, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create report file: %w", err)
			}
			defer fhand.Close()

			if err := export.WriteEoXReport(fhand, records); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d EoX records written to %s\n", len(records), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "eox_report.csv", "report file path")
	return cmd
}
