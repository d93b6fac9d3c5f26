package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/authui/internal/config"
	"github.com/authui/internal/db"
)

func registrationsCmd(loadSettings func() (*config.Settings, error)) *cobra.Command {
	var (
		databasePath string
		limit        int
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "registrations",
		Short: "List recorded registration intents",
		Example: `  authctl registrations
  authctl registrations --limit 10 --json
  authctl registrations --database ./data/authui.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databasePath == "" {
				settings, err := loadSettings()
				if err != nil {
					return err
				}
				databasePath = settings.DatabasePath
			}

			database, err := db.Init(databasePath)
			if err != nil {
				return fmt.Errorf("open database %s: %w", databasePath, err)
			}
			defer database.Close()

			intents, err := database.ListRegistrationIntents(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(intents)
			}

			total, err := database.CountRegistrationIntents()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d of %d intents in %s\n", len(intents), total, database.GetDBPath())
			if len(intents) == 0 {
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tEMAIL\tNAME\tREDIRECT")
			for _, intent := range intents {
				name := intent.Name
				if name == "" {
					name = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					intent.CreatedAt.UTC().Format(time.RFC3339), intent.Email, name, intent.RedirectURL)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&databasePath, "database", "", "database file (defaults to DATABASE_PATH)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of intents to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print intents as JSON")
	return cmd
}
