package main

import (
	"bytes"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vango-dev/filerouter/pkg/menu"
)

func menuCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the navigation menu",
		Long: `Compile the routes and print the projected menu: entries with an
explicit order first, then the rest sorted by path under the configured
locale.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.compile(cmd.Context(), nil)
			if err != nil {
				return err
			}
			reportWarnings(cmd.ErrOrStderr(), diagnostics(res, c.cfg.RoutesPath()))

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), menuOrEmpty(res))
			}
			_, err = cmd.OutOrStdout().Write([]byte(renderMenuTable(res.Menu)))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func renderMenuTable(items []menu.Item) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Order", "To", "Title", "Icon"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})

	for _, it := range items {
		order := "-"
		if it.Order != nil {
			order = strconv.FormatFloat(*it.Order, 'g', -1, 64)
		}
		table.Append([]string{order, "/" + it.To, it.Title, it.Icon})
	}
	table.SetFooter([]string{"", "", "", strconv.Itoa(len(items)) + " items"})

	table.Render()
	return buf.String()
}
