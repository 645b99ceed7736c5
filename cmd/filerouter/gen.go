package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filerouter/internal/errors"
	"github.com/vango-dev/filerouter/pkg/pipeline"
)

const (
	routesFileName = "routes.json"
	menuFileName   = "menu.json"
)

func genCmd(c *cli) *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write the merged route table and menu as JSON",
		Long: `Compile the routes directory, merge it with the view map and write
routes.json and menu.json into the output directory.

The output is deterministic: running gen twice on unchanged input
produces identical files.

Examples:
  filerouter gen                       # writes generated/routes.json, generated/menu.json
  filerouter gen --out web/src/routes  # custom output directory
  filerouter gen --stdout | jq .menu   # print both documents as one object`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.compile(cmd.Context(), nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			reportWarnings(cmd.ErrOrStderr(), diagnostics(res, c.cfg.RoutesPath()))

			if toStdout {
				return writeJSON(out, struct {
					Routes any `json:"routes"`
					Menu   any `json:"menu"`
				}{res.RouteList(), menuOrEmpty(res)})
			}
			return writeOutputs(out, c.cfg.OutputPath(), res)
		},
	}

	cmd.Flags().String("out", "", "output directory (default: output.dir, \"generated\")")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print to stdout instead of writing files")
	return cmd
}

func writeOutputs(w io.Writer, dir string, res *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New("R401").Wrap(err)
	}

	files := []struct {
		name string
		v    any
	}{
		{routesFileName, res.RouteList()},
		{menuFileName, menuOrEmpty(res)},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		file, err := os.Create(path)
		if err != nil {
			return errors.New("R401").Wrap(err)
		}
		werr := writeJSON(file, f.v)
		if cerr := file.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return errors.New("R401").WithDetail("Failed to write " + path).Wrap(werr)
		}
		success(w, "Wrote %s", path)
	}
	info(w, "%d files, %d views, %d menu items", res.Files, len(res.Views()), len(res.Menu))
	return nil
}

func menuOrEmpty(res *pipeline.Result) any {
	if res.Menu == nil {
		return []struct{}{}
	}
	return res.Menu
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportWarnings prints one compact line per warning.
func reportWarnings(w io.Writer, warnings []*errors.Error) {
	for _, e := range warnings {
		warn(w, "%s", e.FormatCompact())
	}
	if len(warnings) > 0 {
		fmt.Fprintln(w)
	}
}
