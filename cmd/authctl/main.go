package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/authui/internal/config"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "authctl",
		Short: "Inspect the auth UI route guard and its data",
		Long: `authctl resolves the auth UI configuration the same way the server does
and shows how the route guard treats individual paths.

Configuration comes from AUTH_CONFIG_FILE (or --config) and the
AUTH_MIDDLEWARE, AUTH_PROTECT_BY_DEFAULT, AUTH_EXCEPTION_ROUTES and
AUTH_MOCK environment overrides.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "auth UI options file (defaults to AUTH_CONFIG_FILE)")

	load := func() (config.Config, error) {
		settings, err := config.Load()
		if err != nil {
			return config.Config{}, err
		}
		if configFile != "" {
			settings.ConfigFile = configFile
		}
		return settings.AuthConfig()
	}

	rootCmd.AddCommand(
		checkCmd(load),
		configCmd(load),
		registrationsCmd(config.Load),
		versionCmd(),
	)
	return rootCmd
}
