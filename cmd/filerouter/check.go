package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filerouter/internal/errors"
)

func checkCmd(c *cli) *cobra.Command {
	var (
		strict bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the routes directory and view map",
		Long: `Compile the routes without writing anything. Naming conflicts fail
the check; unloadable modules and dropped or duplicate views are printed as
warnings and fail the check only with --strict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.compile(cmd.Context(), nil)
			if err != nil {
				return err
			}
			warnings := diagnostics(res, c.cfg.RoutesPath())
			out := cmd.OutOrStdout()

			for _, w := range warnings {
				if asJSON {
					fmt.Fprintln(out, w.FormatJSON())
				} else {
					fmt.Fprint(out, w.Format())
				}
			}

			if strict && len(warnings) > 0 {
				return errors.Newf(errors.CategoryRoutes, "%d warning(s) with --strict", len(warnings))
			}
			if !asJSON {
				success(out, "%d route files, %d views, %d warning(s)", res.Files, len(res.Views()), len(warnings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per warning")
	return cmd
}
