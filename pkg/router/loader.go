package router

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"strconv"
	"strings"
)

// ModuleLoader loads the exports of a page or layout file.
//
// LoadModule returns an empty Module (or nil) for a file that exports
// neither a component nor a config, and an error when the file cannot be
// read or understood.
type ModuleLoader interface {
	LoadModule(file string) (*Module, error)
}

// ModuleLoaderFunc adapts a function to ModuleLoader.
type ModuleLoaderFunc func(file string) (*Module, error)

// LoadModule implements ModuleLoader.
func (f ModuleLoaderFunc) LoadModule(file string) (*Module, error) {
	return f(file)
}

// GoSourceLoader reads page files as Go source without compiling them.
//
// The component is the first exported top-level function named Page or
// Layout, or ending in "Page" or "Layout" (e.g., UserPage). The config is
// the exported package-level variable named Config, or another variable
// ending in "Config" that is initialised with a ViewConfig composite literal:
//
//	var UserConfig = router.ViewConfig{
//	    Title: "User",
//	    Menu:  &router.MenuConfig{Icon: "user", Order: router.Order(2), Exclude: router.Bool(true)},
//	}
//
// Only literal values are understood; anything else is a load error.
type GoSourceLoader struct {
	fsys fs.FS
}

// NewGoSourceLoader creates a loader reading from fsys.
func NewGoSourceLoader(fsys fs.FS) *GoSourceLoader {
	return &GoSourceLoader{fsys: fsys}
}

// LoadModule implements ModuleLoader.
func (l *GoSourceLoader) LoadModule(file string) (*Module, error) {
	src, err := fs.ReadFile(l.fsys, file)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(src)) == 0 {
		return &Module{}, nil
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	mod := &Module{}
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if mod.Component != nil || d.Recv != nil || !d.Name.IsExported() {
				continue
			}
			if isComponentName(d.Name.Name) {
				mod.Component = ComponentRef{Package: f.Name.Name, Name: d.Name.Name, File: file}
			}

		case *ast.GenDecl:
			if d.Tok != token.VAR || mod.Config != nil {
				continue
			}
			for _, spec := range d.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok || mod.Config != nil {
					continue
				}
				for i, ident := range vs.Names {
					if !ident.IsExported() || i >= len(vs.Values) || !isConfigVar(ident.Name, vs.Values[i]) {
						continue
					}
					cfg, err := parseViewConfig(vs.Values[i])
					if err != nil {
						pos := fset.Position(vs.Values[i].Pos())
						return nil, fmt.Errorf("%s: %s: %w", pos, ident.Name, err)
					}
					mod.Config = cfg
					break
				}
			}
		}
	}

	return mod, nil
}

func isComponentName(name string) bool {
	return strings.HasSuffix(name, "Page") || strings.HasSuffix(name, "Layout")
}

// isConfigVar reports whether a package-level var holds the view config.
// A var named Config always does; other vars ending in "Config" only when
// initialised with a ViewConfig literal, so DBConfig = load() is ignored.
func isConfigVar(name string, value ast.Expr) bool {
	if name == "Config" {
		return true
	}
	if !strings.HasSuffix(name, "Config") {
		return false
	}
	lit, ok := compositeLit(value)
	if !ok {
		return false
	}
	switch t := lit.Type.(type) {
	case *ast.Ident:
		return t.Name == "ViewConfig"
	case *ast.SelectorExpr:
		return t.Sel.Name == "ViewConfig"
	}
	return false
}

// compositeLit unwraps &T{...} and T{...}.
func compositeLit(expr ast.Expr) (*ast.CompositeLit, bool) {
	if u, ok := expr.(*ast.UnaryExpr); ok && u.Op == token.AND {
		expr = u.X
	}
	lit, ok := expr.(*ast.CompositeLit)
	return lit, ok
}

func parseViewConfig(expr ast.Expr) (*ViewConfig, error) {
	lit, ok := compositeLit(expr)
	if !ok {
		return nil, fmt.Errorf("config must be a composite literal")
	}

	cfg := &ViewConfig{}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return nil, fmt.Errorf("config fields must be keyed")
		}
		key, _ := kv.Key.(*ast.Ident)
		if key == nil {
			continue
		}

		var err error
		switch key.Name {
		case "Title":
			cfg.Title, err = stringLit(kv.Value)
		case "Route":
			cfg.Route, err = stringLit(kv.Value)
		case "Menu":
			cfg.Menu, err = parseMenuConfig(kv.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key.Name, err)
		}
	}
	return cfg, nil
}

func parseMenuConfig(expr ast.Expr) (*MenuConfig, error) {
	lit, ok := compositeLit(expr)
	if !ok {
		return nil, fmt.Errorf("menu must be a composite literal")
	}

	menu := &MenuConfig{}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return nil, fmt.Errorf("menu fields must be keyed")
		}
		key, _ := kv.Key.(*ast.Ident)
		if key == nil {
			continue
		}

		var err error
		switch key.Name {
		case "Title":
			menu.Title, err = stringLit(kv.Value)
		case "Icon":
			menu.Icon, err = stringLit(kv.Value)
		case "Order":
			menu.Order, err = orderCall(kv.Value)
		case "Exclude":
			menu.Exclude, err = excludeValue(kv.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key.Name, err)
		}
	}
	return menu, nil
}

func stringLit(expr ast.Expr) (string, error) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", fmt.Errorf("expected string literal")
	}
	return strconv.Unquote(lit.Value)
}

func boolLit(expr ast.Expr) (bool, error) {
	ident, ok := expr.(*ast.Ident)
	if !ok {
		return false, fmt.Errorf("expected true or false")
	}
	switch ident.Name {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("expected true or false")
}

// excludeValue accepts Bool(b), pkg.Bool(b) or a bare true/false.
func excludeValue(expr ast.Expr) (*bool, error) {
	if arg, ok := helperArg(expr, "Bool"); ok {
		expr = arg
	}
	b, err := boolLit(expr)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// orderCall accepts Order(n) or pkg.Order(n) with a numeric literal argument.
func orderCall(expr ast.Expr) (*float64, error) {
	arg, ok := helperArg(expr, "Order")
	if !ok {
		return nil, fmt.Errorf("expected Order(n)")
	}
	n, err := numberLit(arg)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// helperArg returns the single argument of a call to name or pkg.name.
func helperArg(expr ast.Expr, name string) (ast.Expr, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil, false
	}
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		return call.Args[0], fn.Name == name
	case *ast.SelectorExpr:
		return call.Args[0], fn.Sel.Name == name
	}
	return nil, false
}

func numberLit(expr ast.Expr) (float64, error) {
	sign := 1.0
	if u, ok := expr.(*ast.UnaryExpr); ok && (u.Op == token.SUB || u.Op == token.ADD) {
		if u.Op == token.SUB {
			sign = -1
		}
		expr = u.X
	}
	lit, ok := expr.(*ast.BasicLit)
	if !ok || (lit.Kind != token.INT && lit.Kind != token.FLOAT) {
		return 0, fmt.Errorf("expected numeric literal")
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(lit.Value, "_", ""), 64)
	if err != nil {
		return 0, err
	}
	return sign * n, nil
}
