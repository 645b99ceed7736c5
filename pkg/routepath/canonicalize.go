package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Path errors.
var (
	ErrInvalidSegment       = errors.New("invalid path segment")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
	ErrWildcardNotLast      = errors.New("wildcard must be the final segment")
)

// Parse splits a route template into segments.
//
// Leading, trailing and repeated slashes are ignored, as are "." segments,
// so "/profile/", "profile" and "//profile/." all parse to one segment.
// A ".." segment is rejected rather than resolved: route templates never
// navigate. The root template ("", "/") parses to no segments.
func Parse(path string) ([]Segment, error) {
	if strings.Contains(path, "\\") {
		return nil, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") {
		return nil, ErrNullByteInPath
	}

	var segments []Segment
	for _, raw := range strings.Split(path, "/") {
		switch raw {
		case "", ".":
			continue
		case "..":
			return nil, ErrPathEscapesRoot
		}
		if n := len(segments); n > 0 && segments[n-1].Param == ParamWildcard {
			return nil, ErrWildcardNotLast
		}
		seg, err := ParseSegment(raw)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// Key returns the canonical merge key for a route template: segments in key
// form joined by "/", with no leading or trailing slash. The root key is "".
func Key(path string) (string, error) {
	segments, err := Parse(path)
	if err != nil {
		return "", err
	}
	return JoinKey(segments), nil
}

// JoinKey renders segments as a merge key.
func JoinKey(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Key()
	}
	return strings.Join(parts, "/")
}

// Render renders segments in router syntax without a leading slash.
func Render(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// Join joins two router paths, ignoring empty sides.
func Join(parent, child string) string {
	parent = strings.Trim(parent, "/")
	child = strings.Trim(child, "/")
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	}
	return parent + "/" + child
}

// SplitURL canonicalizes a concrete request path and returns its decoded
// segments. Empty and "." segments are dropped and ".." is resolved, but
// never above the root.
func SplitURL(input string) ([]string, error) {
	path, _, _ := strings.Cut(input, "?")

	if strings.Contains(path, "\\") {
		return nil, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return nil, ErrNullByteInPath
	}

	var result []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(result) == 0 {
				return nil, ErrPathEscapesRoot
			}
			result = result[:len(result)-1]
			continue
		}
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			return nil, ErrInvalidPercentEscape
		}
		result = append(result, decoded)
	}
	return result, nil
}
