package router

import "github.com/vango-dev/filerouter/pkg/routepath"

// ParamKind classifies a parameter segment as required, optional or wildcard.
type ParamKind = routepath.ParamKind

// Parameter kinds.
const (
	ParamRequired = routepath.ParamRequired
	ParamOptional = routepath.ParamOptional
	ParamWildcard = routepath.ParamWildcard
)

// MenuConfig controls how a view appears in the navigation menu.
type MenuConfig struct {
	// Title overrides the view title in the menu.
	Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`

	// Icon is an opaque icon reference for the UI.
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`

	// Order positions the entry; nil sorts like +Inf.
	Order *float64 `json:"order,omitempty" yaml:"order,omitempty" toml:"order,omitempty"`

	// Exclude removes the view from the menu. nil leaves the decision to
	// the other side of a merge.
	Exclude *bool `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty"`
}

// Excluded reports whether Exclude is set to true.
func (m MenuConfig) Excluded() bool {
	return m.Exclude != nil && *m.Exclude
}

// ViewConfig is the metadata a page file exports, and the shape of one
// entry in a server view map.
type ViewConfig struct {
	// Title is the page title.
	Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`

	// Route overrides the path segment derived from the file name.
	Route string `json:"route,omitempty" yaml:"route,omitempty" toml:"route,omitempty"`

	// Params maps a parameter segment (":id", ":id?", "*") to its kind.
	// Only server view maps carry params.
	Params map[string]ParamKind `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`

	// Menu holds navigation menu metadata.
	Menu *MenuConfig `json:"menu,omitempty" yaml:"menu,omitempty" toml:"menu,omitempty"`
}

// Order returns a pointer to n, for use in MenuConfig literals.
func Order(n float64) *float64 {
	return &n
}

// Bool returns a pointer to b, for use in MenuConfig literals.
func Bool(b bool) *bool {
	return &b
}

// Module is what a ModuleLoader extracts from a page file: the exported
// component and the exported configuration. Either may be absent.
type Module struct {
	// Component is the exported page component. Its concrete type belongs
	// to the loader; GoSourceLoader produces a ComponentRef.
	Component any `json:"component,omitempty"`

	// Config is the exported view configuration.
	Config *ViewConfig `json:"config,omitempty"`
}

// IsEmpty reports whether the file exported nothing usable.
func (m *Module) IsEmpty() bool {
	return m == nil || (m.Component == nil && m.Config == nil)
}

func (m *Module) config() ViewConfig {
	if m == nil || m.Config == nil {
		return ViewConfig{}
	}
	return *m.Config
}

// ComponentRef identifies a page component declared in Go source.
type ComponentRef struct {
	// Package is the Go package name of the file.
	Package string `json:"package"`

	// Name is the exported function name (e.g., "UserPage").
	Name string `json:"name"`

	// File is the file path relative to the routes root.
	File string `json:"file"`
}

// RouteConfig is one node of the client route configuration, produced by
// Transform from the filesystem tree.
type RouteConfig struct {
	// Path is the router path segment (e.g., "list", ":user", ":opt?", "*").
	// An empty path marks an index route of its parent.
	Path string `json:"path"`

	// File is the source file of Module, relative to the routes root.
	File string `json:"file,omitempty"`

	// Module is the loaded page or layout; nil for pass-through nodes and
	// for files that exported nothing or failed to load.
	Module *Module `json:"module,omitempty"`

	// Layout marks Module as a layout wrapping Children.
	Layout bool `json:"layout,omitempty"`

	// Children are nested routes in listing order.
	Children []*RouteConfig `json:"children,omitempty"`
}

// ServerViews maps a route template (e.g., "/profile/friends/:user") to the
// metadata the server knows for it. It is a read-only snapshot.
type ServerViews map[string]ViewConfig

// Origin records which side of a merge a route came from.
type Origin int

const (
	// OriginClient routes exist only in the client route configuration.
	OriginClient Origin = iota + 1

	// OriginServer routes exist only in the server view map.
	OriginServer

	// OriginBoth routes were matched in both sources.
	OriginBoth
)

func (o Origin) String() string {
	switch o {
	case OriginClient:
		return "client"
	case OriginServer:
		return "server"
	case OriginBoth:
		return "both"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ViewRoute is a node of the merged route tree.
type ViewRoute struct {
	// Path is the router path segment.
	Path string `json:"path"`

	// FullPath is the router path from the root, without leading slash.
	FullPath string `json:"fullPath"`

	// Module comes from the client side only.
	Module *Module `json:"module,omitempty"`

	// Layout marks Module as a layout wrapping Children.
	Layout bool `json:"layout,omitempty"`

	// Title is the server title when present, else the client title.
	Title string `json:"title,omitempty"`

	// Menu is the resolved menu metadata.
	Menu MenuConfig `json:"menu"`

	// Params is the server's parameter classification, if any.
	Params map[string]ParamKind `json:"params,omitempty"`

	// Origin records which sources contributed to this route.
	Origin Origin `json:"origin"`

	// Passthrough marks a route created only to nest a deeper server view.
	Passthrough bool `json:"passthrough,omitempty"`

	// Children are nested routes; client order first, then server-only
	// routes in key order.
	Children []*ViewRoute `json:"children,omitempty"`
}

// IsView reports whether the route is a navigable view: it carries a
// non-layout module or server metadata.
func (r *ViewRoute) IsView() bool {
	if r.Passthrough {
		return false
	}
	if r.Origin == OriginServer || r.Origin == OriginBoth {
		return true
	}
	return r.Module != nil && !r.Layout
}

// Walk visits r and its descendants depth-first in child order.
// Returning false from fn skips the node's children.
func (r *ViewRoute) Walk(fn func(*ViewRoute) bool) {
	if r == nil || !fn(r) {
		return
	}
	for _, child := range r.Children {
		child.Walk(fn)
	}
}
