package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/authui/internal/config"
	"github.com/authui/internal/guard"
	"github.com/authui/internal/logger"
)

type checkResult struct {
	Path     string      `json:"path"`
	Action   string      `json:"action"`
	Location string      `json:"location,omitempty"`
	Class    guard.Class `json:"class"`
}

func checkCmd(load func() (config.Config, error)) *cobra.Command {
	var (
		authenticated bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Show the guard decision for one or more paths",
		Example: `  authctl check /dashboard
  authctl check --authenticated /auth/sign-in
  authctl check --json / /admin/users /terms`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			// Pattern warnings go to stderr so stdout stays parseable
			slog.SetDefault(logger.New(cmd.ErrOrStderr(), "production", false))
			g := guard.New(cfg)

			results := make([]checkResult, 0, len(args))
			for _, path := range args {
				d := g.Evaluate(path, authenticated)
				results = append(results, checkResult{
					Path:     path,
					Action:   d.Action.String(),
					Location: d.Location,
					Class:    d.Class,
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if g.Disabled() {
				fmt.Fprintln(out, "guard disabled (middleware: false); every path is allowed")
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tACTION\tLOCATION\tPROTECTED")
			for _, r := range results {
				location := r.Location
				if location == "" {
					location = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", r.Path, r.Action, location, r.Class.Protected)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&authenticated, "authenticated", "a", false, "evaluate as a signed-in visitor")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}
