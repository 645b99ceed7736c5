package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		wantMsg      string
		wantCat      Category
		wantSeverity Severity
	}{
		{"config", "R101", "Config file could not be read", CategoryConfig, SeverityError},
		{"naming conflict", "R201", "Route naming conflict", CategoryRoutes, SeverityError},
		{"unloadable module", "R203", "Route module could not be loaded", CategoryRoutes, SeverityWarning},
		{"dropped view", "R302", "Server view dropped", CategoryViewMap, SeverityWarning},
		{"unknown", "R999", "Unknown error", "", SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Severity != tt.wantSeverity {
				t.Errorf("Severity = %q, want %q", err.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown format %q", "ini")
	if err.Message != `unknown format "ini"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI || err.IsWarning() {
		t.Errorf("Category = %q, warning = %v", err.Category, err.IsWarning())
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"coded", New("R201"), "R201: Route naming conflict"},
		{"uncoded", &Error{Message: "plain"}, "plain"},
		{"wrapped", New("R301").Wrap(fs.ErrNotExist), "R301: View map could not be loaded: file does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := New("R301").Wrap(fs.ErrNotExist)
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should see the wrapped error")
	}

	var target *Error
	if !stderrors.As(error(err), &target) || target.Code != "R301" {
		t.Errorf("errors.As = %v", target)
	}
}

func writeRouteFile(t *testing.T) (dir, rel string) {
	t.Helper()
	dir = t.TempDir()
	rel = "users/{id}.go"
	content := `package id

var Config = router.ViewConfig{
	Title: "User",
	Menu:  &router.MenuConfig{Order: "x"},
}

func UserPage() {}
`
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, rel
}

func TestWithLocation(t *testing.T) {
	dir, rel := writeRouteFile(t)
	file := filepath.Join(dir, filepath.FromSlash(rel))

	err := New("R203").WithLocation(file, 5, 35)
	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.File != file || err.Location.Line != 5 || err.Location.Column != 35 {
		t.Errorf("Location = %+v", err.Location)
	}
	if len(err.Context) != 5 {
		t.Fatalf("Context = %q, want 5 lines", err.Context)
	}
	if !strings.Contains(err.Context[2], `Order: "x"`) {
		t.Errorf("Context[2] = %q", err.Context[2])
	}
}

func TestWithLocationFromError(t *testing.T) {
	dir, rel := writeRouteFile(t)

	cause := stderrors.New(rel + `:5:35: menu order must be a number`)
	err := New("R203").WithLocationFromError(cause, dir)
	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	want := filepath.Join(dir, "users", "{id}.go")
	if err.Location.File != want {
		t.Errorf("File = %q, want %q", err.Location.File, want)
	}
	if err.Location.Line != 5 || err.Location.Column != 35 {
		t.Errorf("Location = %+v", err.Location)
	}
	if len(err.Context) == 0 {
		t.Error("Context should be loaded")
	}

	plain := New("R203").WithLocationFromError(stderrors.New("no position here"), dir)
	if plain.Location != nil {
		t.Errorf("Location = %+v, want nil", plain.Location)
	}
	if New("R203").WithLocationFromError(nil, dir).Location != nil {
		t.Error("nil error should not set a location")
	}
}

func TestBuilders(t *testing.T) {
	example := "routes/\n  users/\n    {id}.go"
	err := New("R201").
		WithDetailf("%q conflicts with %q", "a.go", "a/$index.go").
		WithSuggestion("Remove one of the files").
		WithExample(example).
		WithContext([]string{"line"}).
		WithNotes("a.go → /a", "a/$index.go → /a")

	if err.Detail != `"a.go" conflicts with "a/$index.go"` {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "Remove one of the files" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if err.Example != example {
		t.Errorf("Example = %q", err.Example)
	}
	if len(err.Context) != 1 {
		t.Errorf("Context = %q", err.Context)
	}
	if len(err.Notes) != 2 {
		t.Errorf("Notes = %q", err.Notes)
	}
	if !strings.Contains(err.Format(), "  • a/$index.go → /a\n") {
		t.Errorf("Format() does not list notes:\n%s", err.Format())
	}
	if got := New("R201").WithDetail("d").Detail; got != "d" {
		t.Errorf("WithDetail = %q", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "R204") != nil {
		t.Error("FromError(nil) should return nil")
	}

	coded := New("R201")
	if FromError(coded, "R204") != coded {
		t.Error("FromError should return an *Error as-is")
	}

	plain := stderrors.New("walk failed")
	got := FromError(plain, "R204")
	if got.Code != "R204" || got.Wrapped != plain {
		t.Errorf("FromError = %+v", got)
	}
}

func TestLocationString(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{"nil", nil, ""},
		{"with column", &Location{File: "a.go", Line: 10, Column: 5}, "a.go:10:5"},
		{"without column", &Location{File: "a.go", Line: 10}, "a.go:10"},
		{"file only", &Location{File: "a.go"}, "a.go"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	dir, rel := writeRouteFile(t)
	file := filepath.Join(dir, filepath.FromSlash(rel))

	formatted := New("R203").
		WithLocation(file, 5, 35).
		Wrap(stderrors.New("menu order must be a number")).
		WithSuggestion("Use router.Order(1)").
		WithExample("Menu: &router.MenuConfig{Order: router.Order(1)}").
		Format()

	for _, want := range []string{
		"WARNING R203: Route module could not be loaded",
		file + ":5:35",
		"→    5 │",
		"^",
		"Cause: menu order must be a number",
		"Hint: Use router.Order(1)",
		"Example:",
		"Learn more: https://filerouter.dev/docs/errors/R203",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}

	if got := New("R201").Format(); !strings.Contains(got, "ERROR R201: Route naming conflict") {
		t.Errorf("Format() = %q", got)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("R203").WithLocation("about.go", 3, 1)
	if got, want := err.FormatCompact(), "about.go:3:1: R203: Route module could not be loaded"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}

	err = New("R302").Wrap(stderrors.New(`"/a/../b": path escapes root`))
	if got, want := err.FormatCompact(), `R302: Server view dropped: "/a/../b": path escapes root`; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("R203").WithLocation("about.go", 3, 1).Wrap(stderrors.New("boom"))

	var got map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &got); jerr != nil {
		t.Fatalf("FormatJSON() is not JSON: %v", jerr)
	}
	if got["code"] != "R203" || got["category"] != "routes" || got["severity"] != "warning" {
		t.Errorf("FormatJSON() = %v", got)
	}
	if got["cause"] != "boom" {
		t.Errorf("cause = %v", got["cause"])
	}
	loc, ok := got["location"].(map[string]any)
	if !ok || loc["file"] != "about.go" || loc["line"] != float64(3) {
		t.Errorf("location = %v", got["location"])
	}
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 || codes[0] != "R101" {
		t.Fatalf("GetAllCodes() = %v", codes)
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted: %v", codes)
		}
	}
	for _, code := range codes {
		tmpl, _ := GetTemplate(code)
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("%s: incomplete template %+v", code, tmpl)
		}
		if !strings.HasPrefix(code, "R") || len(code) != 4 {
			t.Errorf("malformed code %q", code)
		}
	}

	if _, ok := GetTemplate("R999"); ok {
		t.Error("R999 should not exist")
	}
}

func TestRegister(t *testing.T) {
	Register("R999", ErrorTemplate{Category: CategoryCLI, Message: "Custom"})
	defer delete(registry, "R999")

	if err := New("R999"); err.Message != "Custom" || err.Severity != SeverityError {
		t.Errorf("New(R999) = %+v", err)
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 || got[0] != "short text" {
		t.Errorf("short: %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("long: got %d lines: %v", len(got), got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("empty: %v", got)
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, New("R202"))
	if !strings.Contains(buf.String(), "ERROR R202: Routes directory not found") {
		t.Errorf("PrintError(coded) = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, stderrors.New("plain failure"))
	if got := buf.String(); got != "\nERROR: plain failure\n\n" {
		t.Errorf("PrintError(plain) = %q", got)
	}
}

func TestColors(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("x"), colorRed) {
		t.Error("red should carry an ANSI code when colors are enabled")
	}
	DisableColors()
	if strings.Contains(yellow("x"), "\033[") {
		t.Error("yellow should be plain when colors are disabled")
	}
	EnableColors()
}
