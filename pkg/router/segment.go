package router

import (
	"fmt"
	"strings"

	"github.com/vango-dev/filerouter/pkg/routepath"
)

// Default marker names. Markers are matched against the file name with its
// extension removed.
const (
	DefaultLayoutMarker = "$layout"
	DefaultIndexMarker  = "$index"
)

// SegmentKind classifies one file or directory name.
type SegmentKind int

const (
	KindLiteral SegmentKind = iota
	KindRequiredParam
	KindOptionalParam
	KindWildcard
	KindLayout
	KindIndex
	KindIgnored
)

var segmentKindNames = [...]string{
	KindLiteral:       "literal",
	KindRequiredParam: "required-param",
	KindOptionalParam: "optional-param",
	KindWildcard:      "wildcard",
	KindLayout:        "layout",
	KindIndex:         "index",
	KindIgnored:       "ignored",
}

func (k SegmentKind) String() string {
	if int(k) < len(segmentKindNames) {
		return segmentKindNames[k]
	}
	return fmt.Sprintf("SegmentKind(%d)", int(k))
}

// RouteSegment is the classification of a single filesystem name.
type RouteSegment struct {
	Kind SegmentKind

	// Name is the literal text or the parameter identifier.
	Name string

	// Raw is the name as found on disk, extension removed.
	Raw string
}

// Pattern renders the segment in router syntax. Layout, index and ignored
// segments occupy no path and render as "".
func (s RouteSegment) Pattern() string {
	switch s.Kind {
	case KindLiteral:
		return s.Name
	case KindRequiredParam:
		return ":" + s.Name
	case KindOptionalParam:
		return ":" + s.Name + "?"
	case KindWildcard:
		return "*"
	default:
		return ""
	}
}

// slot returns the identity used for sibling conflict detection. Required
// and optional params share a slot: a router cannot tell them apart.
func (s RouteSegment) slot() string {
	switch s.Kind {
	case KindRequiredParam, KindOptionalParam:
		return ":"
	case KindWildcard:
		return "*"
	case KindIndex:
		return ""
	default:
		return s.Name
	}
}

// Classifier turns file and directory names into route segments.
type Classifier struct {
	LayoutMarker string
	IndexMarker  string
}

// DefaultClassifier uses the $layout and $index markers.
var DefaultClassifier = Classifier{
	LayoutMarker: DefaultLayoutMarker,
	IndexMarker:  DefaultIndexMarker,
}

// ClassifySegment classifies name using the default markers.
func ClassifySegment(name string) (RouteSegment, error) {
	return DefaultClassifier.Classify(name)
}

// Classify classifies a file (extension already removed) or directory name.
//
// Rules, in order:
//
//	_name        → ignored (with its whole subtree)
//	$layout      → layout of the enclosing directory
//	$index       → index route of the enclosing directory
//	{{name}}     → optional param, :name?
//	{...name}    → wildcard, *
//	{name}       → required param, :name
//	anything else → literal, verbatim
//
// Names that match none of the param forms but contain reserved characters
// are rejected with ErrInvalidSegment.
func (c Classifier) Classify(name string) (RouteSegment, error) {
	seg := RouteSegment{Raw: name}

	switch {
	case name == "":
		return seg, fmt.Errorf("%w: empty name", ErrInvalidSegment)
	case strings.HasPrefix(name, "_"):
		seg.Kind = KindIgnored
		seg.Name = name
		return seg, nil
	case name == c.LayoutMarker:
		seg.Kind = KindLayout
		return seg, nil
	case name == c.IndexMarker:
		seg.Kind = KindIndex
		return seg, nil
	}

	// Route template characters would be ambiguous in a file name.
	if strings.HasPrefix(name, ":") || strings.HasPrefix(name, "*") {
		return seg, fmt.Errorf("%w: %q uses router syntax; use {name} forms", ErrInvalidSegment, name)
	}

	parsed, err := routepath.ParseSegment(name)
	if err != nil {
		return seg, err
	}

	seg.Name = parsed.Name
	switch parsed.Param {
	case routepath.ParamRequired:
		seg.Kind = KindRequiredParam
	case routepath.ParamOptional:
		seg.Kind = KindOptionalParam
	case routepath.ParamWildcard:
		seg.Kind = KindWildcard
	default:
		seg.Kind = KindLiteral
	}
	return seg, nil
}
