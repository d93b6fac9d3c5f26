package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/authui/internal/config"
)

func configCmd(load func() (config.Config, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved auth UI configuration",
		Long: `Print the configuration after defaults and environment overrides are
applied. A disabled guard prints as "middleware: false".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}

			switch output {
			case "json":
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			case "yaml":
				// Round trip through JSON so the field names and the
				// middleware sentinel match the API
				var doc interface{}
				if err := json.Unmarshal(data, &doc); err != nil {
					return err
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown output format %q (want yaml or json)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")
	return cmd
}
