package router

import (
	"strings"

	"github.com/vango-dev/filerouter/pkg/routepath"
)

// Match is the result of resolving a concrete path against a route table.
type Match struct {
	// Route is the matched view.
	Route *ViewRoute

	// Layouts are the layout routes wrapping Route, outermost first.
	Layouts []*ViewRoute

	// Params holds the extracted parameter values. A wildcard is stored
	// under "*" with the remaining segments joined by "/".
	Params map[string]string
}

// Matcher resolves request paths against a merged route tree.
// It is read-only after construction and safe for concurrent use.
type Matcher struct {
	root *matchNode
}

// matchNode is a node in the matching tree.
type matchNode struct {
	// segment is the literal segment this node matches
	segment string

	// paramName is set for parameter and catch-all nodes
	paramName string

	// optional marks a parameter that may be absent
	optional bool

	// view is the route served at this node, with its layout chain
	view    *ViewRoute
	layouts []*ViewRoute

	// children are static segment children
	children []*matchNode

	// paramChildren are dynamic parameter children (:id, :id?)
	paramChildren []*matchNode

	// catchAllChild is the catch-all child (*)
	catchAllChild *matchNode
}

// NewMatcher builds a matcher for every view in root. When two views render
// to the same pattern the first in walk order wins.
func NewMatcher(root *ViewRoute) *Matcher {
	m := &Matcher{root: &matchNode{}}
	if root != nil {
		m.insert(root, m.root, nil)
	}
	return m
}

func (m *Matcher) insert(vr *ViewRoute, parent *matchNode, layouts []*ViewRoute) {
	segs, err := routepath.Parse(vr.Path)
	if err != nil {
		return
	}
	current := parent
	for _, seg := range segs {
		current = current.addChild(seg)
	}

	if vr.Layout {
		layouts = append(layouts[:len(layouts):len(layouts)], vr)
	} else if vr.IsView() && current.view == nil {
		current.view = vr
		current.layouts = layouts
	}

	for _, child := range vr.Children {
		m.insert(child, current, layouts)
	}
}

// addChild adds or retrieves a child node for the given segment.
func (n *matchNode) addChild(seg routepath.Segment) *matchNode {
	switch seg.Param {
	case routepath.ParamWildcard:
		if n.catchAllChild == nil {
			n.catchAllChild = &matchNode{paramName: "*"}
		}
		return n.catchAllChild

	case routepath.ParamRequired, routepath.ParamOptional:
		optional := seg.Param == routepath.ParamOptional
		for _, child := range n.paramChildren {
			if child.paramName == seg.Name && child.optional == optional {
				return child
			}
		}
		child := &matchNode{paramName: seg.Name, optional: optional}
		n.paramChildren = append(n.paramChildren, child)
		return child
	}

	for _, child := range n.children {
		if child.segment == seg.Name {
			return child
		}
	}
	child := &matchNode{segment: seg.Name}
	n.children = append(n.children, child)
	return child
}

// Match resolves path. Static segments are preferred over parameters and
// parameters over the catch-all. It returns false when no view matches or
// the path cannot be canonicalized.
func (m *Matcher) Match(path string) (Match, bool) {
	segments, err := routepath.SplitURL(path)
	if err != nil {
		return Match{}, false
	}
	params := make(map[string]string)
	node, ok := m.root.match(segments, params)
	if !ok {
		return Match{}, false
	}
	return Match{Route: node.view, Layouts: node.layouts, Params: params}, true
}

// match finds a node with a view for the given path segments.
func (n *matchNode) match(segments []string, params map[string]string) (*matchNode, bool) {
	if len(segments) == 0 {
		if n.view != nil {
			return n, true
		}
		// An optional parameter may match nothing.
		for _, child := range n.paramChildren {
			if child.optional {
				if node, ok := child.match(nil, params); ok {
					return node, true
				}
			}
		}
		if n.catchAllChild != nil && n.catchAllChild.view != nil {
			params["*"] = ""
			return n.catchAllChild, true
		}
		return nil, false
	}

	segment := segments[0]
	remaining := segments[1:]

	// Try exact match first
	for _, child := range n.children {
		if child.segment == segment {
			if node, ok := child.match(remaining, params); ok {
				return node, true
			}
		}
	}

	// Try parameter match
	for _, child := range n.paramChildren {
		params[child.paramName] = segment
		if node, ok := child.match(remaining, params); ok {
			return node, true
		}
		// Backtrack on failure
		delete(params, child.paramName)

		if child.optional {
			if node, ok := child.match(segments, params); ok {
				return node, true
			}
		}
	}

	// Try catch-all match
	if n.catchAllChild != nil && n.catchAllChild.view != nil {
		params["*"] = strings.Join(segments, "/")
		return n.catchAllChild, true
	}

	return nil, false
}
