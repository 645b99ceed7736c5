package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/vango-dev/filerouter/internal/config"
	"github.com/vango-dev/filerouter/internal/errors"
	"github.com/vango-dev/filerouter/pkg/pipeline"
	"github.com/vango-dev/filerouter/pkg/router"
	"github.com/vango-dev/filerouter/pkg/viewmap"
)

// compile runs the pipeline for the loaded configuration. Failures come
// back as coded errors.
func (c *cli) compile(ctx context.Context, metrics *pipeline.Metrics) (*pipeline.Result, error) {
	cfg := c.cfg
	dir := cfg.RoutesPath()

	stat, err := os.Stat(dir)
	if err != nil || !stat.IsDir() {
		e := errors.New("R202").
			WithDetailf("%s is not a directory.", dir).
			WithSuggestion("Set routes.dir in " + config.ConfigFileName + " or pass --routes")
		if err != nil {
			e.Wrap(err)
		}
		return nil, e
	}

	views, err := viewmap.Load(cfg.ViewsPath())
	if err != nil {
		return nil, errors.New("R301").Wrap(err)
	}

	res, err := pipeline.Compile(ctx, pipeline.Options{
		FS: os.DirFS(dir),
		Scan: router.ScanOptions{
			Extensions: cfg.Routes.Extensions,
			Classifier: router.Classifier{
				LayoutMarker: cfg.Routes.LayoutMarker,
				IndexMarker:  cfg.Routes.IndexMarker,
			},
		},
		CacheSize: cfg.Cache.Size,
		Views:     views,
		Locale:    cfg.Menu.Locale,
		Logger:    slog.Default(),
		Metrics:   metrics,
	})
	if err != nil {
		return nil, compileError(err)
	}
	return res, nil
}

func compileError(err error) *errors.Error {
	var multi *router.MultiValidationError
	if stderrors.As(err, &multi) {
		e := errors.New("R201").
			WithDetailf("Found %d route naming conflict(s).", len(multi.Errors)).
			WithSuggestion("Rename or remove one of the files in each conflict")
		for _, v := range multi.Errors {
			e.WithNotes(conflictNote(v))
		}
		return e
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.New("R202").Wrap(err)
	}
	return errors.FromError(err, "R204")
}

func conflictNote(v router.ValidationError) string {
	note := v.Message
	if len(v.Files) > 0 {
		note += fmt.Sprintf(" (%s)", joinFiles(v.Files))
	}
	return note
}

func joinFiles(files []string) string {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

// diagnostics lists the non-fatal problems of a compiled table as
// warnings, in a stable order.
func diagnostics(res *pipeline.Result, routesDir string) []*errors.Error {
	var out []*errors.Error
	for _, le := range res.LoadErrors {
		e := errors.New("R203").
			WithDetailf("%s is kept in the route tree without a component or config.", le.File).
			Wrap(le.Err).
			WithLocationFromError(le.Err, routesDir)
		if e.Location == nil {
			e.Location = &errors.Location{File: le.File}
		}
		out = append(out, e)
	}
	for _, d := range res.Report.Dropped {
		out = append(out, errors.New("R302").
			WithDetailf("Server view %q was not merged.", d.Path).
			Wrap(d.Err))
	}
	for _, key := range res.Report.Duplicates {
		out = append(out, errors.New("R303").
			WithDetailf("Route %q was claimed more than once.", "/"+key))
	}
	return out
}
