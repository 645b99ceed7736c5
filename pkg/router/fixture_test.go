package router

import (
	"testing"
	"testing/fstest"
)

// testRoutesFS generates the following structure:
//
//	root
//	├── profile
//	│   ├── account
//	│   │   ├── $layout.go
//	│   │   └── security
//	│   │       ├── password.go
//	│   │       ├── password.css
//	│   │       └── two-factor-auth.go
//	│   ├── friends
//	│   │   ├── $layout.go
//	│   │   ├── list.go
//	│   │   └── {user}.go
//	│   ├── $index.go
//	│   └── index.css
//	├── test
//	│   ├── {{optional}}.go
//	│   ├── {...wildcard}.go
//	│   ├── _ignored.go
//	│   ├── empty.go
//	│   └── no-default-export.go
//	└── nameToReplace.go
func testRoutesFS() fstest.MapFS {
	return fstest.MapFS{
		"profile/account/$layout.go": file(`package account

var Config = router.ViewConfig{Title: "Account"}

func AccountLayout() {}
`),
		"profile/account/security/password.go": file(`package security

func PasswordPage() {}
`),
		"profile/account/security/password.css": file(""),
		"profile/account/security/two-factor-auth.go": file(`package security

func TwoFactorAuthPage() {}
`),
		"profile/friends/$layout.go": file(`package friends

func FriendsLayout() {}
`),
		"profile/friends/list.go": file(`package friends

var Config = router.ViewConfig{Title: "List"}

func ListPage() {}
`),
		"profile/friends/{user}.go": file(`package friends

var UserConfig = router.ViewConfig{Title: "User"}

func UserPage() {}
`),
		"profile/$index.go": file(`package profile

var Config = router.ViewConfig{Title: "Profile"}

func ProfilePage() {}
`),
		"profile/index.css": file(""),
		"nameToReplace.go": file(`package routes

var Config = router.ViewConfig{Route: "about", Title: "About"}

func AboutPage() {}
`),
		"test/{...wildcard}.go": file(`package test

var Config = router.ViewConfig{Title: "Wildcard"}

func WildcardPage() {}
`),
		"test/{{optional}}.go": file(`package test

var Config = router.ViewConfig{Title: "Optional"}

func OptionalPage() {}
`),
		"test/empty.go":    file(""),
		"test/_ignored.go": file("package test\n\nfunc IgnoredPage() {}\n"),
		"test/no-default-export.go": file(`package test

var Config = router.ViewConfig{Title: "No Default Export"}
`),
	}
}

func file(src string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(src)}
}

// scanFixture scans fsys with a Go source loader.
func scanFixture(t *testing.T, fsys fstest.MapFS) (*RouteNode, ModuleLoader) {
	t.Helper()
	loader := NewGoSourceLoader(fsys)
	root, err := NewScanner(fsys).ScanWithOptions(ScanOptions{Loader: loader})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	return root, loader
}

// compileFixture runs scan, transform and merge over fsys.
func compileFixture(t *testing.T, fsys fstest.MapFS, server ServerViews) *ViewRoute {
	t.Helper()
	root, loader := scanFixture(t, fsys)
	client, failures := Transform(root, loader)
	if len(failures) > 0 {
		t.Fatalf("Transform() failures = %v", failures)
	}
	merged, report := Merge(client, server, MergeOptions{})
	if len(report.Dropped) > 0 || len(report.Duplicates) > 0 {
		t.Fatalf("Merge() report = %+v", report)
	}
	return merged
}

// viewPaths lists the full paths of every view in walk order.
func viewPaths(root *ViewRoute) []string {
	var out []string
	root.Walk(func(vr *ViewRoute) bool {
		if vr.IsView() {
			out = append(out, vr.FullPath)
		}
		return true
	})
	return out
}

// findView returns the first view with the given full path.
func findView(root *ViewRoute, fullPath string) *ViewRoute {
	var found *ViewRoute
	root.Walk(func(vr *ViewRoute) bool {
		if found == nil && vr.IsView() && vr.FullPath == fullPath {
			found = vr
		}
		return found == nil
	})
	return found
}

func componentName(m *Module) string {
	if m == nil {
		return ""
	}
	if ref, ok := m.Component.(ComponentRef); ok {
		return ref.Name
	}
	return ""
}
