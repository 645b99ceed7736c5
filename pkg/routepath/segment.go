package routepath

import (
	"fmt"
	"strings"
	"unicode"
)

// ParamKind classifies a parameter-bearing path segment.
type ParamKind int

const (
	// ParamNone marks a literal segment.
	ParamNone ParamKind = iota

	// ParamRequired is a ":name" segment.
	ParamRequired

	// ParamOptional is a ":name?" segment.
	ParamOptional

	// ParamWildcard is the "*" catch-all segment.
	ParamWildcard
)

// String returns the wire form used by server view maps.
func (k ParamKind) String() string {
	switch k {
	case ParamRequired:
		return "req"
	case ParamOptional:
		return "opt"
	case ParamWildcard:
		return "*"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ParamKind) MarshalText() ([]byte, error) {
	if k == ParamNone {
		return nil, fmt.Errorf("routepath: literal segment has no param kind")
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Both the short wire names ("req", "opt", "*") and the long names
// ("required", "optional", "wildcard") are accepted.
func (k *ParamKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "req", "required":
		*k = ParamRequired
	case "opt", "optional":
		*k = ParamOptional
	case "*", "wildcard":
		*k = ParamWildcard
	default:
		return fmt.Errorf("%w: unknown param kind %q", ErrInvalidSegment, text)
	}
	return nil
}

// Segment is one parsed path component.
type Segment struct {
	// Name is the literal text or the parameter identifier.
	// Wildcards keep the identifier they were declared with, if any.
	Name string

	// Param is the parameter kind, ParamNone for literals.
	Param ParamKind
}

// String renders the segment in router syntax: name, :name, :name? or *.
func (s Segment) String() string {
	switch s.Param {
	case ParamRequired:
		return ":" + s.Name
	case ParamOptional:
		return ":" + s.Name + "?"
	case ParamWildcard:
		return "*"
	default:
		return s.Name
	}
}

// Key renders the segment as used in merge keys.
// Required and optional parameters share a key so that a kind mismatch
// between two sources still lines up on the same node.
func (s Segment) Key() string {
	switch s.Param {
	case ParamRequired, ParamOptional:
		return ":" + s.Name
	case ParamWildcard:
		return "*"
	default:
		return s.Name
	}
}

// IsParam reports whether the segment binds a value.
func (s Segment) IsParam() bool {
	return s.Param != ParamNone
}

// ParseSegment parses a single segment in either file syntax
// ({id}, {{id}}, {...rest}) or router syntax (:id, :id?, *, *rest).
func ParseSegment(raw string) (Segment, error) {
	if raw == "" {
		return Segment{}, fmt.Errorf("%w: empty segment", ErrInvalidSegment)
	}

	switch {
	case strings.HasPrefix(raw, "{{") && strings.HasSuffix(raw, "}}"):
		return paramSegment(raw, raw[2:len(raw)-2], ParamOptional)
	case strings.HasPrefix(raw, "{...") && strings.HasSuffix(raw, "}"):
		return paramSegment(raw, raw[4:len(raw)-1], ParamWildcard)
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		return paramSegment(raw, raw[1:len(raw)-1], ParamRequired)
	case raw == "*":
		return Segment{Param: ParamWildcard}, nil
	case strings.HasPrefix(raw, "*"):
		return paramSegment(raw, raw[1:], ParamWildcard)
	case strings.HasPrefix(raw, ":") && strings.HasSuffix(raw, "?"):
		return paramSegment(raw, raw[1:len(raw)-1], ParamOptional)
	case strings.HasPrefix(raw, ":"):
		return paramSegment(raw, raw[1:], ParamRequired)
	}

	if strings.ContainsAny(raw, "{}:*?/\\") {
		return Segment{}, fmt.Errorf("%w: %q contains reserved characters", ErrInvalidSegment, raw)
	}
	if strings.TrimSpace(raw) != raw {
		return Segment{}, fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidSegment, raw)
	}
	return Segment{Name: raw}, nil
}

func paramSegment(raw, name string, kind ParamKind) (Segment, error) {
	if !isIdentifier(name) {
		return Segment{}, fmt.Errorf("%w: bad parameter name in %q", ErrInvalidSegment, raw)
	}
	return Segment{Name: name, Param: kind}, nil
}

// isIdentifier accepts letters, digits, '_' and '-', not starting with a digit.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case unicode.IsLetter(r), r == '_':
		case unicode.IsDigit(r) && i > 0:
		case r == '-' && i > 0:
		default:
			return false
		}
	}
	return true
}
