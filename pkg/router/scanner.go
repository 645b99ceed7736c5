package router

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// RouteNode is one node of the filesystem-derived route tree.
type RouteNode struct {
	// Segment is the classified name of the file or directory.
	Segment RouteSegment

	// Dir is the directory backing this node, if any.
	Dir string

	// File is the page file for exactly this path, if any.
	File string

	// Layout is the layout file wrapping every descendant, if any.
	Layout string

	// Empty marks File as exporting neither a component nor a config.
	// The path is still known but contributes no module.
	Empty bool

	// Children are nested nodes in directory listing order.
	Children []*RouteNode
}

// Path returns the node's path segment in router syntax.
func (n *RouteNode) Path() string {
	return n.Segment.Pattern()
}

func (n *RouteNode) sources() []string {
	var out []string
	if n.Dir != "" {
		out = append(out, n.Dir)
	}
	if n.File != "" {
		out = append(out, n.File)
	}
	return out
}

// Walk visits n and its descendants depth-first with their route paths.
func (n *RouteNode) Walk(fn func(path string, node *RouteNode)) {
	n.walk("", fn)
}

func (n *RouteNode) walk(parent string, fn func(string, *RouteNode)) {
	p := parent
	if seg := n.Path(); seg != "" {
		if p == "" {
			p = seg
		} else {
			p = p + "/" + seg
		}
	}
	fn(p, n)
	for _, child := range n.Children {
		child.walk(p, fn)
	}
}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	// Extensions lists the file extensions that define routes.
	// Other files (stylesheets, images) are assets and are ignored.
	// Default: [".go"]
	Extensions []string

	// Classifier parses names. Zero value means DefaultClassifier.
	Classifier Classifier

	// Loader, when set, is consulted to mark files that export nothing
	// as Empty. Load errors are not fatal here.
	Loader ModuleLoader
}

func (o ScanOptions) withDefaults() ScanOptions {
	if len(o.Extensions) == 0 {
		o.Extensions = []string{".go"}
	}
	if o.Classifier.LayoutMarker == "" {
		o.Classifier.LayoutMarker = DefaultLayoutMarker
	}
	if o.Classifier.IndexMarker == "" {
		o.Classifier.IndexMarker = DefaultIndexMarker
	}
	return o
}

// Scanner builds a RouteNode tree from a directory of page files.
type Scanner struct {
	fsys fs.FS
}

// NewScanner creates a scanner rooted at fsys. Use os.DirFS for a
// directory on disk.
func NewScanner(fsys fs.FS) *Scanner {
	return &Scanner{fsys: fsys}
}

// Scan builds the route tree with default options.
func (s *Scanner) Scan() (*RouteNode, error) {
	return s.ScanWithOptions(ScanOptions{})
}

// ScanWithOptions builds the route tree. Any naming conflict anywhere in
// the tree fails the whole scan with a *MultiValidationError listing every
// problem; no partial tree is returned.
func (s *Scanner) ScanWithOptions(opts ScanOptions) (*RouteNode, error) {
	opts = opts.withDefaults()

	root := &RouteNode{Dir: "."}
	v := NewValidator()

	if err := s.scanDir(root, ".", opts, v); err != nil {
		return nil, err
	}
	if err := v.ValidateTree(root); err != nil {
		return nil, err
	}
	return root, nil
}

// RouteFiles lists every route and layout file the scan would consider,
// in walk order. Hosts use it to preload modules before scanning.
func (s *Scanner) RouteFiles(opts ScanOptions) ([]string, error) {
	opts = opts.withDefaults()

	var files []string
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if strings.HasPrefix(d.Name(), "_") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isRouteFile(d.Name(), opts.Extensions) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func isRouteFile(name string, exts []string) bool {
	ext := path.Ext(name)
	if ext == ".go" && strings.HasSuffix(name, "_test.go") {
		return false
	}
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// scanDir fills node from the entries of dir. Read errors abort the scan;
// naming problems are recorded in v and scanning continues so that every
// conflict is reported at once.
func (s *Scanner) scanDir(node *RouteNode, dir string, opts ScanOptions, v *Validator) error {
	entries, err := fs.ReadDir(s.fsys, dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}

	byRaw := make(map[string]*RouteNode)

	for _, entry := range entries {
		name := entry.Name()
		full := path.Join(dir, name)
		isDir := entry.IsDir()

		stem := name
		if !isDir {
			if !isRouteFile(name, opts.Extensions) {
				continue
			}
			stem = strings.TrimSuffix(name, path.Ext(name))
		}

		seg, err := opts.Classifier.Classify(stem)
		if err != nil {
			v.add(ValidationError{
				Type:    ErrorInvalidName,
				Message: fmt.Sprintf("Invalid route name %q", name),
				Path:    routePathOf(dir),
				Files:   []string{full},
				Details: err.Error(),
			})
			continue
		}

		switch seg.Kind {
		case KindIgnored:
			continue
		case KindLayout, KindIndex:
			if isDir {
				v.add(ValidationError{
					Type:    ErrorInvalidName,
					Message: fmt.Sprintf("Marker %q cannot name a directory", name),
					Path:    routePathOf(dir),
					Files:   []string{full},
				})
				continue
			}
		}

		if seg.Kind == KindLayout {
			if s.isEmpty(full, opts) {
				continue
			}
			if node.Layout != "" {
				v.add(ValidationError{
					Type:    ErrorDuplicateLayout,
					Message: fmt.Sprintf("Multiple layouts in %s", dir),
					Path:    routePathOf(dir),
					Files:   []string{node.Layout, full},
				})
				continue
			}
			node.Layout = full
			continue
		}

		child, ok := byRaw[seg.Raw]
		if !ok {
			child = &RouteNode{Segment: seg}
			byRaw[seg.Raw] = child
			node.Children = append(node.Children, child)
		}

		if isDir {
			child.Dir = full
			if err := s.scanDir(child, full, opts, v); err != nil {
				return err
			}
			continue
		}

		if child.File != "" {
			v.add(ValidationError{
				Type:    ErrorDuplicateRoute,
				Message: fmt.Sprintf("Duplicate route file for %q", seg.Raw),
				Path:    routePathOf(dir),
				Files:   []string{child.File, full},
			})
			continue
		}
		child.File = full
		child.Empty = s.isEmpty(full, opts)
	}

	// Directories holding nothing routable are dropped.
	kept := node.Children[:0]
	for _, child := range node.Children {
		if child.File == "" && child.Layout == "" && len(child.Children) == 0 {
			continue
		}
		kept = append(kept, child)
	}
	node.Children = kept

	return nil
}

func (s *Scanner) isEmpty(file string, opts ScanOptions) bool {
	if opts.Loader == nil {
		return false
	}
	mod, err := opts.Loader.LoadModule(file)
	return err == nil && mod.IsEmpty()
}

// routePathOf is used for error reporting only; it renders the directory
// path as written on disk.
func routePathOf(dir string) string {
	if dir == "." {
		return ""
	}
	return dir
}
