package errors

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Category groups codes by the stage that produced them.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryRoutes  Category = "routes"
	CategoryViewMap Category = "viewmap"
	CategoryCLI     Category = "cli"
)

// Severity says whether a diagnostic stops compilation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Location is a position inside a route file or config file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Line <= 0 {
		return l.File
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a coded diagnostic printed by the CLI.
type Error struct {
	// Code is the registry key, e.g. "R201".
	Code string

	Category Category
	Severity Severity

	// Message is the one-line summary.
	Message string

	// Detail is a longer explanation, wrapped when formatted.
	Detail string

	Location *Location

	// Context holds the source lines around Location.
	Context []string

	// Notes are extra lines listed under Detail, one per item involved.
	Notes []string

	// Suggestion is printed as a hint.
	Suggestion string

	// Example is a snippet showing a valid layout or file.
	Example string

	DocURL string

	Wrapped error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return e.Code + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// IsWarning reports whether e does not fail the run.
func (e *Error) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// WithLocation points the error at file:line:column and loads nearby lines.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithLocationFromError reads a "file:line:col: msg" prefix from err, as
// produced by go/parser, and resolves file against baseDir.
func (e *Error) WithLocationFromError(err error, baseDir string) *Error {
	if err == nil {
		return e
	}
	parts := strings.SplitN(err.Error(), ":", 4)
	if len(parts) < 3 {
		return e
	}
	line, lerr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if lerr != nil || line <= 0 {
		return e
	}
	col, _ := strconv.Atoi(strings.TrimSpace(parts[2]))

	file := parts[0]
	if baseDir != "" && !filepath.IsAbs(file) {
		file = filepath.Join(baseDir, filepath.FromSlash(file))
	}
	return e.WithLocation(file, line, col)
}

func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

func (e *Error) WithExample(ex string) *Error {
	e.Example = ex
	return e
}

func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithDetailf sets Detail from a format string.
func (e *Error) WithDetailf(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithNotes appends lines listed under the detail.
func (e *Error) WithNotes(notes ...string) *Error {
	e.Notes = append(e.Notes, notes...)
	return e
}

func (e *Error) WithContext(lines []string) *Error {
	e.Context = lines
	return e
}

// Wrap records the cause.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}
	return lines
}

// New returns an Error filled from the registered template for code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:     code,
			Severity: SeverityError,
			Message:  "Unknown error",
		}
	}
	severity := template.Severity
	if severity == "" {
		severity = SeverityError
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Severity: severity,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf returns an uncoded error.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err under code unless it already is an *Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(code).Wrap(err)
}
