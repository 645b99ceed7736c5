package router

import (
	"fmt"
	"log/slog"
	"strings"
)

// LoadError records a page or layout file whose module could not be loaded.
// The route stays reachable without a module.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Transformer converts a RouteNode tree into a RouteConfig tree.
type Transformer struct {
	loader ModuleLoader
	logger *slog.Logger
}

// NewTransformer creates a transformer loading modules with loader.
// If logger is nil, slog.Default() is used.
func NewTransformer(loader ModuleLoader, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{loader: loader, logger: logger}
}

// Transform builds the client route configuration for root.
//
// A directory with a layout becomes a layout route wrapping its
// descendants; a page that also has nested routes becomes the index child
// of a pass-through route. Pass-through routes left with no children are
// pruned, which can cascade upward. Files that fail to load keep their
// route without a module and are returned as LoadErrors.
//
// The input tree is not modified.
func (t *Transformer) Transform(root *RouteNode) (*RouteConfig, []*LoadError) {
	var failures []*LoadError
	cfg := t.transformNode(root, &failures)
	if cfg == nil {
		cfg = &RouteConfig{}
	}
	return cfg, failures
}

func (t *Transformer) transformNode(n *RouteNode, failures *[]*LoadError) *RouteConfig {
	var children []*RouteConfig
	for _, child := range n.Children {
		if c := t.transformNode(child, failures); c != nil {
			children = append(children, c)
		}
	}

	hasContent := n.File != ""
	var content *Module
	if hasContent && !n.Empty {
		content = t.load(n.File, failures)
	}

	segment := n.Path()
	if content != nil && content.Config != nil {
		if route := strings.Trim(content.Config.Route, "/"); route != "" {
			segment = route
		}
	}

	var layout *Module
	if n.Layout != "" {
		layout = t.load(n.Layout, failures)
	}

	switch {
	case layout != nil:
		rc := &RouteConfig{Path: segment, File: n.Layout, Module: layout, Layout: true}
		if hasContent {
			rc.Children = append(rc.Children, &RouteConfig{File: n.File, Module: content})
		}
		rc.Children = append(rc.Children, children...)
		return rc

	case hasContent && len(children) > 0:
		index := &RouteConfig{File: n.File, Module: content}
		return &RouteConfig{Path: segment, Children: append([]*RouteConfig{index}, children...)}

	case hasContent:
		return &RouteConfig{Path: segment, File: n.File, Module: content}

	case len(children) > 0:
		return &RouteConfig{Path: segment, Children: children}
	}

	return nil
}

// load returns nil for empty and unloadable files.
func (t *Transformer) load(file string, failures *[]*LoadError) *Module {
	if t.loader == nil {
		return nil
	}
	mod, err := t.loader.LoadModule(file)
	if err != nil {
		*failures = append(*failures, &LoadError{File: file, Err: err})
		t.logger.Warn("route module unloadable, keeping path without module",
			"file", file,
			"error", err,
		)
		return nil
	}
	if mod.IsEmpty() {
		return nil
	}
	return mod
}

// Transform converts root using loader and the default logger.
func Transform(root *RouteNode, loader ModuleLoader) (*RouteConfig, []*LoadError) {
	return NewTransformer(loader, nil).Transform(root)
}
