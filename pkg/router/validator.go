package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/filerouter/pkg/routepath"
)

// =============================================================================
// Route Tree Validation
// =============================================================================

// ErrNamingConflict is matched by errors.Is for every validation failure.
var ErrNamingConflict = errors.New("route naming conflict")

// ValidationError represents a route validation error.
type ValidationError struct {
	// Type is the error category
	Type ValidationErrorType

	// Message is the human-readable error message
	Message string

	// Files are the source files or directories involved
	Files []string

	// Path is the route path where the conflict occurs
	Path string

	// Details contains additional error-specific information
	Details string
}

func (e ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Is makes every ValidationError match ErrNamingConflict.
func (e ValidationError) Is(target error) bool {
	return target == ErrNamingConflict
}

// ValidationErrorType categorizes validation errors.
type ValidationErrorType string

const (
	// ErrorSegmentConflict indicates two siblings claim the same segment slot.
	// Example: {id}.go and {slug}.go in the same directory.
	ErrorSegmentConflict ValidationErrorType = "SEGMENT_CONFLICT"

	// ErrorDuplicateRoute indicates two files provide content for one path.
	// Example: users.go and users/$index.go, or list.go and list.tsx.
	ErrorDuplicateRoute ValidationErrorType = "DUPLICATE_ROUTE"

	// ErrorDuplicateLayout indicates two layout files in one directory.
	ErrorDuplicateLayout ValidationErrorType = "DUPLICATE_LAYOUT"

	// ErrorWildcardNotLast indicates a wildcard directory with nested routes.
	// Example: docs/{...rest}/edit.go
	ErrorWildcardNotLast ValidationErrorType = "WILDCARD_NOT_LAST"

	// ErrorInvalidName indicates a name the classifier rejects, or a marker
	// used as a directory name.
	ErrorInvalidName ValidationErrorType = "INVALID_NAME"
)

// MultiValidationError wraps multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d route validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Is reports whether target is ErrNamingConflict.
func (e *MultiValidationError) Is(target error) bool {
	return target == ErrNamingConflict && len(e.Errors) > 0
}

// Validator checks a route tree for conflicts. Scanning feeds it the
// problems that cannot be represented in a tree (bad names, duplicate
// stems); ValidateTree adds the structural ones.
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new route validator.
func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) add(err ValidationError) {
	v.errors = append(v.errors, err)
}

// Err returns nil if no problem was recorded, or a MultiValidationError
// with all of them in a stable order.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	errs := append([]ValidationError(nil), v.errors...)
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Path != errs[j].Path {
			return errs[i].Path < errs[j].Path
		}
		return errs[i].Type < errs[j].Type
	})
	return &MultiValidationError{Errors: errs}
}

// ValidateTree checks root and every descendant and returns the accumulated
// result, including anything recorded before the call.
func (v *Validator) ValidateTree(root *RouteNode) error {
	if root != nil {
		v.validateNode(root, "")
	}
	return v.Err()
}

// ValidateTree validates a route tree on its own.
func ValidateTree(root *RouteNode) error {
	return NewValidator().ValidateTree(root)
}

func (v *Validator) validateNode(n *RouteNode, parentPath string) {
	path := routepath.Join(parentPath, n.Path())

	v.validateSiblings(n, path)

	if n.Segment.Kind == KindWildcard && len(n.Children) > 0 {
		v.add(ValidationError{
			Type:    ErrorWildcardNotLast,
			Message: fmt.Sprintf("Wildcard %q has nested routes at /%s", n.Segment.Raw, path),
			Path:    path,
			Files:   n.sources(),
			Details: "a wildcard consumes the rest of the path and must be the final segment",
		})
	}

	if n.File != "" {
		for _, child := range n.Children {
			if child.Segment.Kind == KindIndex && child.File != "" {
				v.add(ValidationError{
					Type:    ErrorDuplicateRoute,
					Message: fmt.Sprintf("Duplicate route detected at /%s", path),
					Path:    path,
					Files:   []string{n.File, child.File},
					Details: fmt.Sprintf("Files: %s, %s", n.File, child.File),
				})
			}
		}
	}

	for _, child := range n.Children {
		v.validateNode(child, path)
	}
}

// validateSiblings reports children that resolve to the same segment slot.
// Entries sharing a raw name were already merged by the scanner, so any
// remaining collision is a real conflict.
func (v *Validator) validateSiblings(n *RouteNode, path string) {
	bySlot := make(map[string][]*RouteNode)
	var order []string
	for _, child := range n.Children {
		slot := child.Segment.slot()
		if _, seen := bySlot[slot]; !seen {
			order = append(order, slot)
		}
		bySlot[slot] = append(bySlot[slot], child)
	}

	for _, slot := range order {
		nodes := bySlot[slot]
		if len(nodes) <= 1 {
			continue
		}
		var files, names []string
		for _, c := range nodes {
			files = append(files, c.sources()...)
			names = append(names, c.Segment.Raw)
		}
		v.add(ValidationError{
			Type:    ErrorSegmentConflict,
			Message: fmt.Sprintf("Conflicting segments under /%s", path),
			Path:    path,
			Files:   files,
			Details: fmt.Sprintf("Names: %s", strings.Join(names, " vs ")),
		})
	}
}

// FormatValidationError formats a validation error for display:
//
//	ERROR: Duplicate route detected at /users
//	  users.go → /users
//	  users/$index.go → /users
func FormatValidationError(err ValidationError) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("ERROR: %s\n", err.Message))

	for _, file := range err.Files {
		sb.WriteString(fmt.Sprintf("  %s → /%s\n", file, err.Path))
	}

	if err.Details != "" {
		sb.WriteString(fmt.Sprintf("  Details: %s\n", err.Details))
	}

	return sb.String()
}
