package main

import (
	"bytes"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vango-dev/filerouter/internal/errors"
	"github.com/vango-dev/filerouter/pkg/router"
	"github.com/vango-dev/filerouter/pkg/viewmap"
)

func viewsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "Inspect and convert server view map snapshots",
	}
	cmd.AddCommand(viewsLintCmd(c), viewsConvertCmd())
	return cmd
}

func viewsLintCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [file]",
		Short: "List view map entries with their merge keys",
		Long: `Print every view map entry with the key it merges under. Entries
whose path cannot be parsed are marked and fail the command.

Without an argument the configured views.file is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfg.ViewsPath()
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("R301").
					WithDetail("No view map configured.").
					WithSuggestion("Pass a file or set views.file")
			}
			views, err := viewmap.Load(path)
			if err != nil {
				return errors.New("R301").Wrap(err)
			}

			table, bad := renderViewsTable(views)
			if _, err := cmd.OutOrStdout().Write([]byte(table)); err != nil {
				return err
			}
			if bad > 0 {
				return errors.New("R302").WithDetailf("%d of %d view path(s) cannot be merged.", bad, len(views))
			}
			return nil
		},
	}
}

func renderViewsTable(views router.ServerViews) (string, int) {
	paths := make([]string, 0, len(views))
	for p := range views {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Key", "Title"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)

	bad := 0
	for _, p := range paths {
		key, err := router.MergeKey(p)
		if err != nil {
			bad++
			key = "invalid: " + err.Error()
		} else {
			key = "/" + key
		}
		table.Append([]string{p, key, views[p].Title})
	}
	table.Render()
	return buf.String(), bad
}

func viewsConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a view map between JSON, YAML and TOML",
		Example: `  filerouter views convert views.json views.yaml
  filerouter views convert views.yaml -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := viewmap.Load(args[0])
			if err != nil {
				return errors.New("R301").Wrap(err)
			}

			if args[1] == "-" {
				return viewmap.Encode(cmd.OutOrStdout(), views, viewmap.FormatJSON)
			}
			format, err := viewmap.FormatOf(args[1])
			if err != nil {
				return errors.New("R301").Wrap(err)
			}
			var buf bytes.Buffer
			if err := viewmap.Encode(&buf, views, format); err != nil {
				return errors.New("R401").Wrap(err)
			}
			if err := os.WriteFile(args[1], buf.Bytes(), 0o644); err != nil {
				return errors.New("R401").Wrap(err)
			}
			success(cmd.OutOrStdout(), "Wrote %d views to %s", len(views), args[1])
			return nil
		},
	}
}
