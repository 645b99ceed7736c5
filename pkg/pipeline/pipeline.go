// Package pipeline runs the full route compilation: scan the routes
// directory, load modules, build the client configuration, merge it with
// the server view map and project the menu.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/filerouter/pkg/menu"
	"github.com/vango-dev/filerouter/pkg/router"
)

const tracerName = "github.com/vango-dev/filerouter/pkg/pipeline"

// Stage names, used for spans, metrics labels and StageError.
const (
	StageFiles     = "files"
	StagePreload   = "preload"
	StageScan      = "scan"
	StageTransform = "transform"
	StageMerge     = "merge"
	StageMenu      = "menu"
)

// Options configures one compilation.
type Options struct {
	// FS is the routes directory.
	FS fs.FS

	// Scan carries extensions and markers. Its Loader is ignored.
	Scan router.ScanOptions

	// Loader reads route modules. Default: router.NewGoSourceLoader(FS).
	Loader router.ModuleLoader

	// CacheSize bounds the parsed-module cache.
	// Default: router.DefaultCacheSize
	CacheSize int

	// Views is the server view map. Nil merges against nothing.
	Views router.ServerViews

	// Locale collates menu entries. Default: menu.DefaultLocale
	Locale string

	// Logger receives stage logs and warnings. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics, when set, is updated after every run.
	Metrics *Metrics

	// Tracer creates one span per run and one per stage.
	// Default: the global otel tracer provider.
	Tracer trace.Tracer
}

// Result is a compiled route table.
type Result struct {
	// Routes is the merged tree root.
	Routes *router.ViewRoute

	Menu []menu.Item

	// Report lists dropped and duplicate server views.
	Report router.MergeReport

	// LoadErrors lists route files kept without a module.
	LoadErrors []*router.LoadError

	// Matcher resolves request paths against Routes.
	Matcher *router.Matcher

	// Files is the number of route files considered.
	Files int

	CompiledAt time.Time
	Duration   time.Duration
}

// Views returns every navigable route of the tree in walk order.
func (r *Result) Views() []*router.ViewRoute {
	var out []*router.ViewRoute
	r.Routes.Walk(func(vr *router.ViewRoute) bool {
		if vr.IsView() {
			out = append(out, vr)
		}
		return true
	})
	return out
}

// StageError reports the stage a compilation failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type compiler struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// Compile runs every stage in order. Naming conflicts and filesystem
// failures abort the run; unloadable modules and malformed server views are
// reported in the Result. The only concurrent stage is preload, which
// stops early when ctx is done; a done ctx also stops the run before the
// next stage.
func Compile(ctx context.Context, opts Options) (*Result, error) {
	if opts.FS == nil {
		return nil, &StageError{Stage: StageFiles, Err: errors.New("no routes filesystem")}
	}
	c := &compiler{opts: opts, logger: opts.Logger, tracer: opts.Tracer}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}

	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "filerouter.compile")
	defer span.End()

	res, err := c.run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.observeFailure(err)
		return nil, err
	}

	res.CompiledAt = start
	res.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("filerouter.files", res.Files),
		attribute.Int("filerouter.menu_items", len(res.Menu)),
		attribute.Int("filerouter.load_errors", len(res.LoadErrors)),
		attribute.Int("filerouter.dropped_views", len(res.Report.Dropped)),
	)
	span.SetStatus(codes.Ok, "")
	c.observe(res)

	c.logger.Info("routes compiled",
		"files", res.Files,
		"views", len(res.Views()),
		"menu_items", len(res.Menu),
		"duration", res.Duration,
	)
	return res, nil
}

func (c *compiler) run(ctx context.Context) (*Result, error) {
	opts := c.opts
	res := &Result{}

	next := opts.Loader
	if next == nil {
		next = router.NewGoSourceLoader(opts.FS)
	}
	loader, err := router.NewCachedLoader(next, opts.CacheSize)
	if err != nil {
		return nil, &StageError{Stage: StagePreload, Err: err}
	}
	scan := opts.Scan
	scan.Loader = loader
	scanner := router.NewScanner(opts.FS)

	var files []string
	err = c.stage(ctx, StageFiles, func(context.Context) error {
		files, err = scanner.RouteFiles(scan)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Files = len(files)

	err = c.stage(ctx, StagePreload, func(ctx context.Context) error {
		return loader.Preload(ctx, files)
	})
	if err != nil {
		return nil, err
	}

	var tree *router.RouteNode
	err = c.stage(ctx, StageScan, func(context.Context) error {
		tree, err = scanner.ScanWithOptions(scan)
		return err
	})
	if err != nil {
		return nil, err
	}

	var client *router.RouteConfig
	err = c.stage(ctx, StageTransform, func(context.Context) error {
		client, res.LoadErrors = router.NewTransformer(loader, c.logger).Transform(tree)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.stage(ctx, StageMerge, func(context.Context) error {
		res.Routes, res.Report = router.Merge(client, opts.Views, router.MergeOptions{Logger: c.logger})
		res.Matcher = router.NewMatcher(res.Routes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.stage(ctx, StageMenu, func(context.Context) error {
		res.Menu = menu.Project(res.Routes, menu.Options{Locale: opts.Locale, Logger: c.logger})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// stage runs fn inside a span and records its duration. A failure is
// wrapped in a StageError. A done context stops the run before fn.
func (c *compiler) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: name, Err: err}
	}

	ctx, span := c.tracer.Start(ctx, "filerouter."+name,
		trace.WithAttributes(attribute.String("filerouter.stage", name)),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if m := c.opts.Metrics; m != nil {
		m.stageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	}
	c.logger.Debug("stage finished", "stage", name, "duration", elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &StageError{Stage: name, Err: err}
	}
	return nil
}

func (c *compiler) observe(res *Result) {
	m := c.opts.Metrics
	if m == nil {
		return
	}
	routes := 0
	res.Routes.Walk(func(*router.ViewRoute) bool {
		routes++
		return true
	})

	m.compiles.WithLabelValues("success").Inc()
	m.routes.Set(float64(routes))
	m.views.Set(float64(len(res.Views())))
	m.menuItems.Set(float64(len(res.Menu)))
	m.loadErrors.Add(float64(len(res.LoadErrors)))
	m.droppedViews.Add(float64(len(res.Report.Dropped)))
	m.duplicates.Add(float64(len(res.Report.Duplicates)))
}

func (c *compiler) observeFailure(err error) {
	m := c.opts.Metrics
	if m == nil {
		return
	}
	m.compiles.WithLabelValues("error").Inc()

	var multi *router.MultiValidationError
	if errors.As(err, &multi) {
		m.conflicts.Add(float64(len(multi.Errors)))
	}
}

// RouteList returns the top-level routes for serialization. A bare root
// (no path, module or layout) is unwrapped into its children.
func (r *Result) RouteList() []*router.ViewRoute {
	root := r.Routes
	if root == nil {
		return []*router.ViewRoute{}
	}
	if root.Path == "" && root.Module == nil && !root.Layout && !root.IsView() {
		if root.Children == nil {
			return []*router.ViewRoute{}
		}
		return root.Children
	}
	return []*router.ViewRoute{root}
}
