package router

import "github.com/vango-dev/filerouter/pkg/routepath"

// Path errors, re-exported from routepath.
var (
	ErrInvalidSegment       = routepath.ErrInvalidSegment
	ErrBackslashInPath      = routepath.ErrBackslashInPath
	ErrNullByteInPath       = routepath.ErrNullByteInPath
	ErrInvalidPercentEscape = routepath.ErrInvalidPercentEscape
	ErrPathEscapesRoot      = routepath.ErrPathEscapesRoot
	ErrWildcardNotLast      = routepath.ErrWildcardNotLast
)

// MergeKey returns the canonical key used to match a client route with a
// server view map entry.
func MergeKey(path string) (string, error) {
	return routepath.Key(path)
}
