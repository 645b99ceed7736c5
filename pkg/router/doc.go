// Package router compiles a directory of page files into a nested route
// table and merges it with a server-supplied view map.
//
// The package provides:
//   - File-system based route discovery over an fs.FS
//   - Naming-conflict validation with every problem reported at once
//   - Transformation into a client route configuration with layouts
//   - Merging with a server view map keyed by route template
//   - A matcher resolving request paths against the merged tree
//
// # File Structure Convention
//
//	routes/
//	├── $layout.go           → layout wrapping every route
//	├── about.go             → about
//	├── _drafts/             → ignored, with everything below it
//	├── projects/
//	│   ├── $index.go        → projects
//	│   ├── {id}.go          → projects/:id
//	│   └── $layout.go       → layout for projects/*
//	└── docs/
//	    ├── {{lang}}.go      → docs/:lang?
//	    └── {...path}.go     → docs/*
//
// Files with other extensions (stylesheets, images) sit next to pages as
// assets and are not routes.
//
// # Page Files
//
// GoSourceLoader reads a page without compiling it. The component is an
// exported function whose name ends in Page or Layout, and the config is an
// exported variable whose name ends in Config:
//
//	var Config = router.ViewConfig{
//	    Title: "Project",
//	    Menu:  &router.MenuConfig{Icon: "folder", Order: router.Order(1)},
//	}
//
//	func ProjectPage() {}
//
// # Usage
//
//	fsys := os.DirFS("routes")
//	loader := router.NewGoSourceLoader(fsys)
//
//	tree, err := router.NewScanner(fsys).ScanWithOptions(router.ScanOptions{Loader: loader})
//	if err != nil {
//	    // *MultiValidationError; errors.Is(err, router.ErrNamingConflict)
//	}
//
//	client, failures := router.Transform(tree, loader)
//	merged, report := router.Merge(client, serverViews, router.MergeOptions{})
//
//	m, ok := router.NewMatcher(merged).Match("/projects/123")
//	if ok {
//	    // m.Params["id"] == "123"
//	}
package router
