// Package cmd implements the apix-report CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/apixtools/cisco-apix/pkg/apix"
	"github.com/apixtools/cisco-apix/pkg/auth"
	"github.com/apixtools/cisco-apix/pkg/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "apix-report",
		Short: "Query the Cisco Support and Service APIs",
		Long: "apix-report queries the Cisco Support and Service APIs and writes\n" +
			"the results as reports. Credentials come from a .env file or the\n" +
			"CLIENT_KEY / CLIENT_SECRET / CUSTOMER_ID environment variables.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Config{
				Level:  logging.LogLevel(viper.GetString("log-level")),
				Pretty: viper.GetBool("pretty"),
				Output: os.Stderr,
			})
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default ./.env)")
	rootCmd.PersistentFlags().
		String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		Bool("pretty", false, "human-readable console logging")

	cobra.CheckErr(viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("pretty", rootCmd.PersistentFlags().Lookup("pretty")))

	rootCmd.AddCommand(eoxCmd())
	rootCmd.AddCommand(coverageCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(endpointsCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("env")
		viper.SetConfigName(".env")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newClient builds the API client from the resolved configuration. Missing
// credentials fail here, before any command logic runs.
func newClient() (*apix.Client, error) {
	clientKey := viper.GetString("CLIENT_KEY")
	clientSecret := viper.GetString("CLIENT_SECRET")
	if clientKey == "" || clientSecret == "" {
		return nil, fmt.Errorf("CLIENT_KEY and CLIENT_SECRET must be set (flag --config, .env file, or environment)")
	}

	return apix.New(apix.Config{
		Credentials: auth.Credentials{
			ClientID:     clientKey,
			ClientSecret: clientSecret,
		},
		CustomerID: viper.GetString("CUSTOMER_ID"),
	}), nil
}

// parseParams converts repeated key=value flags into a parameter map.
func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

// queryTimeout bounds one whole logical query, windows and pages included.
const queryTimeout = 10 * time.Minute
