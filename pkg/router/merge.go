package router

import (
	"log/slog"
	"sort"

	"github.com/vango-dev/filerouter/pkg/routepath"
)

// DroppedView is a server view map entry that could not be merged.
type DroppedView struct {
	Path string
	Err  error
}

// MergeReport lists the non-fatal problems of a merge.
type MergeReport struct {
	// Dropped are server entries whose path could not be parsed.
	Dropped []DroppedView

	// Duplicates are keys claimed by more than one entry on the same side.
	// A duplicate client route keeps the first claimant; duplicate server
	// entries overlay the same route in path order.
	Duplicates []string
}

// MergeOptions configures Merge.
type MergeOptions struct {
	// Logger receives warnings. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// merger holds the state of one merge pass.
type merger struct {
	logger *slog.Logger
	report MergeReport
	root   *ViewRoute

	// views maps a merge key to the route that owns it.
	views map[string]*ViewRoute

	// keys holds the merge key of every copied client route.
	keys map[*ViewRoute][]routepath.Segment

	// seen holds the server keys merged so far.
	seen map[string]bool
}

// Merge reconciles the client route configuration with a server view map.
//
// Nesting comes from the client tree. Server entries without a client
// counterpart are inserted by splitting their path into segments; when the
// path ends on an existing pass-through or layout route the view becomes
// that route's index child. For routes present on both sides the module
// stays the client's, while title, menu fields and params from the server
// take precedence.
//
// Neither input is modified.
func Merge(client *RouteConfig, server ServerViews, opts MergeOptions) (*ViewRoute, MergeReport) {
	m := &merger{
		logger: opts.Logger,
		views:  make(map[string]*ViewRoute),
		keys:   make(map[*ViewRoute][]routepath.Segment),
		seen:   make(map[string]bool),
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	root := &ViewRoute{Origin: OriginClient}
	if client != nil {
		root = m.copyClient(client, nil)
	}
	m.root = root

	paths := make([]string, 0, len(server))
	for p := range server {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		m.mergeServer(root, p, server[p])
	}

	setFullPaths(root, "")
	return root, m.report
}

// copyClient deep-copies the client tree, recording merge keys and view
// ownership.
func (m *merger) copyClient(rc *RouteConfig, parent []routepath.Segment) *ViewRoute {
	cfg := rc.Module.config()
	vr := &ViewRoute{
		Path:   rc.Path,
		Module: rc.Module,
		Layout: rc.Layout,
		Title:  cfg.Title,
		Origin: OriginClient,
	}
	if cfg.Menu != nil {
		vr.Menu = *cfg.Menu
	}

	segs, err := routepath.Parse(rc.Path)
	if err != nil {
		m.logger.Warn("client route path not understood, route will not merge",
			"path", rc.Path,
			"file", rc.File,
			"error", err,
		)
	} else {
		key := append(append([]routepath.Segment(nil), parent...), segs...)
		m.keys[vr] = key
		if ownsKey(vr, len(rc.Children)) {
			m.claim(routepath.JoinKey(key), vr)
		}
		parent = key
	}

	for _, child := range rc.Children {
		vr.Children = append(vr.Children, m.copyClient(child, parent))
	}
	return vr
}

// ownsKey reports whether a client route is the view for its path. Layouts
// and pass-through routes leave the key to an index child or to the server.
func ownsKey(vr *ViewRoute, children int) bool {
	if vr.Layout {
		return false
	}
	return vr.Module != nil || children == 0
}

func (m *merger) claim(key string, vr *ViewRoute) {
	if _, taken := m.views[key]; taken {
		m.report.Duplicates = append(m.report.Duplicates, key)
		m.logger.Warn("route path claimed twice, keeping first", "key", key)
		return
	}
	m.views[key] = vr
}

func (m *merger) mergeServer(root *ViewRoute, path string, cfg ViewConfig) {
	segs, err := routepath.Parse(path)
	if err != nil {
		m.report.Dropped = append(m.report.Dropped, DroppedView{Path: path, Err: err})
		m.logger.Warn("server view path not understood, dropping entry",
			"path", path,
			"error", err,
		)
		return
	}

	key := routepath.JoinKey(segs)
	if m.seen[key] {
		m.report.Duplicates = append(m.report.Duplicates, key)
		m.logger.Warn("server view path repeats an earlier entry, overlaying",
			"path", path,
			"key", key,
		)
	}
	m.seen[key] = true

	if vr, ok := m.views[key]; ok {
		m.overlay(vr, cfg)
		return
	}

	vr := m.insert(root, segs)
	m.views[key] = vr
	m.overlay(vr, cfg)
}

// insert creates the route for a server-only path and returns it.
func (m *merger) insert(root *ViewRoute, segs []routepath.Segment) *ViewRoute {
	cur := root
	created := false
	for i, seg := range segs {
		next := findChild(cur, seg.Key())
		created = next == nil
		if created {
			next = &ViewRoute{Path: seg.String(), Origin: OriginServer, Passthrough: true}
			m.keys[next] = append([]routepath.Segment(nil), segs[:i+1]...)
			cur.Children = append(cur.Children, next)
		}
		cur = next
	}

	// A fresh route, or an intermediate created by an earlier entry, becomes
	// the view itself.
	if created || (cur.Origin == OriginServer && cur.Passthrough) {
		cur.Passthrough = false
		return cur
	}

	// The path exists as a client pass-through or layout route.
	index := &ViewRoute{Origin: OriginServer}
	m.keys[index] = m.keys[cur]
	cur.Children = append(cur.Children, index)
	return index
}

// findChild returns the child of vr whose single path segment has the given
// key, looking through pathless wrappers.
func findChild(vr *ViewRoute, key string) *ViewRoute {
	for _, child := range vr.Children {
		if child.Path == "" {
			continue
		}
		seg, err := routepath.ParseSegment(child.Path)
		if err == nil && seg.Key() == key {
			return child
		}
	}
	for _, child := range vr.Children {
		if child.Path == "" && len(child.Children) > 0 {
			if found := findChild(child, key); found != nil {
				return found
			}
		}
	}
	return nil
}

// overlay applies server metadata to vr. Server values win field by field
// where present; params are taken whole and also decide whether a
// parameter segment renders as required or optional.
func (m *merger) overlay(vr *ViewRoute, cfg ViewConfig) {
	if vr.Origin == OriginClient {
		vr.Origin = OriginBoth
	}

	if cfg.Title != "" {
		vr.Title = cfg.Title
	}

	if cfg.Menu != nil {
		if cfg.Menu.Title != "" {
			vr.Menu.Title = cfg.Menu.Title
		}
		if cfg.Menu.Icon != "" {
			vr.Menu.Icon = cfg.Menu.Icon
		}
		if cfg.Menu.Order != nil {
			order := *cfg.Menu.Order
			vr.Menu.Order = &order
		}
		if cfg.Menu.Exclude != nil {
			exclude := *cfg.Menu.Exclude
			vr.Menu.Exclude = &exclude
		}
	}

	if len(cfg.Params) > 0 {
		vr.Params = make(map[string]ParamKind, len(cfg.Params))
		for k, v := range cfg.Params {
			vr.Params[k] = v
		}
		m.applyParamKinds(vr)
	}
}

// applyParamKinds re-renders parameter segments with the kinds the server
// declared for vr. Only required/optional are interchangeable; a wildcard
// never changes shape. An index view has no segment of its own, so its
// params are applied to the nearest ancestor with a path.
func (m *merger) applyParamKinds(vr *ViewRoute) {
	kinds := make(map[string]ParamKind)
	for raw, kind := range vr.Params {
		seg, err := routepath.ParseSegment(raw)
		if err != nil || !seg.IsParam() {
			continue
		}
		kinds[seg.Name] = kind
	}
	if len(kinds) == 0 {
		return
	}

	chain := pathTo(m.root, vr)
	if chain == nil {
		chain = []*ViewRoute{vr}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Path != "" {
			m.renderKinds(chain[i], kinds)
			return
		}
	}
}

func (m *merger) renderKinds(vr *ViewRoute, kinds map[string]ParamKind) {
	own, err := routepath.Parse(vr.Path)
	if err != nil {
		return
	}
	changed := false
	for i, seg := range own {
		if seg.Param != routepath.ParamRequired && seg.Param != routepath.ParamOptional {
			continue
		}
		kind, ok := kinds[seg.Name]
		if !ok || kind == seg.Param || (kind != routepath.ParamRequired && kind != routepath.ParamOptional) {
			continue
		}
		m.logger.Debug("server param kind overrides client",
			"path", vr.Path,
			"param", seg.Name,
			"kind", kind.String(),
		)
		own[i].Param = kind
		changed = true
	}
	if changed {
		vr.Path = routepath.Render(own)
	}
}

// pathTo returns the routes from root down to target, or nil when target
// is not in the tree.
func pathTo(root, target *ViewRoute) []*ViewRoute {
	if root == target {
		return []*ViewRoute{root}
	}
	for _, child := range root.Children {
		if p := pathTo(child, target); p != nil {
			return append([]*ViewRoute{root}, p...)
		}
	}
	return nil
}

func setFullPaths(vr *ViewRoute, parent string) {
	vr.FullPath = routepath.Join(parent, vr.Path)
	for _, child := range vr.Children {
		setFullPaths(child, vr.FullPath)
	}
}
