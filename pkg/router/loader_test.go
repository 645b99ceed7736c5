package router

import (
	"errors"
	"io/fs"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func TestGoSourceLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"full.go": file(`package users

import "github.com/vango-dev/filerouter/pkg/router"

var UserConfig = &router.ViewConfig{
	Title: "User",
	Route: "member",
	Menu: &router.MenuConfig{
		Title:   "Members",
		Icon:    "la la-user",
		Order:   router.Order(-1.5),
		Exclude: false,
	},
}

func helper() {}

func (s *server) ServePage() {}

func UserPage() {}

func OtherPage() {}
`),
		"config-only.go": file(`package users

var Config = router.ViewConfig{Title: "Only", Menu: &router.MenuConfig{Exclude: true, Order: Order(1_000)}}
`),
		"component-only.go": file("package users\n\nfunc SettingsLayout() {}\n"),
		"blank.go":          file("\n\t\n"),
		"nothing.go":        file("package users\n\nfunc helper() {}\n\nvar internalConfig = 1\n"),
		"other-vars.go": file(`package users

var DBConfig = load()

var CacheConfig = cache.Config{Size: 10}

var Config = router.ViewConfig{Title: "Kept", Menu: &router.MenuConfig{Exclude: router.Bool(true)}}

func ListPage() {}
`),
	}

	loader := NewGoSourceLoader(fsys)

	tests := []struct {
		file      string
		component string
		config    *ViewConfig
		empty     bool
	}{
		{
			file:      "full.go",
			component: "UserPage",
			config: &ViewConfig{
				Title: "User",
				Route: "member",
				Menu:  &MenuConfig{Title: "Members", Icon: "la la-user", Order: Order(-1.5), Exclude: Bool(false)},
			},
		},
		{
			file:   "config-only.go",
			config: &ViewConfig{Title: "Only", Menu: &MenuConfig{Exclude: Bool(true), Order: Order(1000)}},
		},
		{
			file:      "other-vars.go",
			component: "ListPage",
			config:    &ViewConfig{Title: "Kept", Menu: &MenuConfig{Exclude: Bool(true)}},
		},
		{
			file:      "component-only.go",
			component: "SettingsLayout",
		},
		{file: "blank.go", empty: true},
		{file: "nothing.go", empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			mod, err := loader.LoadModule(tt.file)
			if err != nil {
				t.Fatalf("LoadModule() error = %v", err)
			}
			if mod.IsEmpty() != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", mod.IsEmpty(), tt.empty)
			}
			if got := componentName(mod); got != tt.component {
				t.Errorf("component = %q, want %q", got, tt.component)
			}
			if !reflect.DeepEqual(mod.Config, tt.config) {
				t.Errorf("config = %+v, want %+v", mod.Config, tt.config)
			}
		})
	}
}

func TestGoSourceLoaderComponentRef(t *testing.T) {
	fsys := fstest.MapFS{"a/b.go": file("package b\n\nfunc BPage() {}\n")}

	mod, err := NewGoSourceLoader(fsys).LoadModule("a/b.go")
	if err != nil {
		t.Fatalf("LoadModule() error = %v", err)
	}
	want := ComponentRef{Package: "b", Name: "BPage", File: "a/b.go"}
	if mod.Component != want {
		t.Errorf("Component = %+v, want %+v", mod.Component, want)
	}
}

func TestGoSourceLoaderErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"syntax.go":   file("package x\n\nfunc (\n"),
		"dynamic.go":  file("package x\n\nvar Config = router.ViewConfig{Title: title()}\n"),
		"notalit.go":  file("package x\n\nvar Config = makeConfig()\n"),
		"badorder.go": file("package x\n\nvar Config = router.ViewConfig{Menu: &router.MenuConfig{Order: 3}}\n"),
	}
	loader := NewGoSourceLoader(fsys)

	for _, name := range []string{"syntax.go", "dynamic.go", "notalit.go", "badorder.go"} {
		if _, err := loader.LoadModule(name); err == nil {
			t.Errorf("LoadModule(%q) expected error", name)
		}
	}

	_, err := loader.LoadModule("missing.go")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v, want fs.ErrNotExist", err)
	}

	_, err = loader.LoadModule("dynamic.go")
	if err == nil || !strings.Contains(err.Error(), "Config") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestModuleLoaderFunc(t *testing.T) {
	calls := 0
	var loader ModuleLoader = ModuleLoaderFunc(func(file string) (*Module, error) {
		calls++
		return &Module{Component: file}, nil
	})

	mod, err := loader.LoadModule("x.go")
	if err != nil || mod.Component != "x.go" || calls != 1 {
		t.Errorf("LoadModule() = %+v, %v (calls %d)", mod, err, calls)
	}
}
