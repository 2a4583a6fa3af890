package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apixtools/cisco-apix/pkg/apix"
)

func queryCmd() *cobra.Command {
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "query ENDPOINT",
		Short: "Run a generic query against a registered endpoint",
		Long: "query runs one logical query against a registered endpoint and\n" +
			"prints all records as JSON. Paginated endpoints are walked to the\n" +
			"last page. Use `apix-report endpoints` to list endpoint names.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
			defer cancel()

			records, err := client.RunQuery(ctx, args[0], params)
			if err != nil {
				return fmt.Errorf("query %s: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "query parameter key=value (repeatable)")
	return cmd
}

func endpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List the registered endpoint names",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range apix.Endpoints() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
