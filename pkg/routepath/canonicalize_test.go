package routepath

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseSegment(t *testing.T) {
	tests := []struct {
		raw  string
		want Segment
	}{
		{"about", Segment{Name: "about"}},
		{"two-factor-auth", Segment{Name: "two-factor-auth"}},
		{"{user}", Segment{Name: "user", Param: ParamRequired}},
		{"{{optional}}", Segment{Name: "optional", Param: ParamOptional}},
		{"{...wildcard}", Segment{Name: "wildcard", Param: ParamWildcard}},
		{":user", Segment{Name: "user", Param: ParamRequired}},
		{":optional?", Segment{Name: "optional", Param: ParamOptional}},
		{"*", Segment{Param: ParamWildcard}},
		{"*slug", Segment{Name: "slug", Param: ParamWildcard}},
	}

	for _, tt := range tests {
		got, err := ParseSegment(tt.raw)
		if err != nil {
			t.Errorf("ParseSegment(%q) unexpected error = %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSegment(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestParseSegmentErrors(t *testing.T) {
	for _, raw := range []string{"", "{}", "{{}}", "{...}", "{a", "a}", "a:b", "a?", ":", ":?", "{1id}", " pad", "{a b}"} {
		if _, err := ParseSegment(raw); !errors.Is(err, ErrInvalidSegment) {
			t.Errorf("ParseSegment(%q) error = %v, want ErrInvalidSegment", raw, err)
		}
	}
}

func TestSegmentRendering(t *testing.T) {
	tests := []struct {
		seg     Segment
		wantStr string
		wantKey string
	}{
		{Segment{Name: "list"}, "list", "list"},
		{Segment{Name: "user", Param: ParamRequired}, ":user", ":user"},
		{Segment{Name: "opt", Param: ParamOptional}, ":opt?", ":opt"},
		{Segment{Name: "rest", Param: ParamWildcard}, "*", "*"},
	}

	for _, tt := range tests {
		if got := tt.seg.String(); got != tt.wantStr {
			t.Errorf("%+v.String() = %q, want %q", tt.seg, got, tt.wantStr)
		}
		if got := tt.seg.Key(); got != tt.wantKey {
			t.Errorf("%+v.Key() = %q, want %q", tt.seg, got, tt.wantKey)
		}
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"/", ""},
		{"/about", "about"},
		{"/profile/", "profile"},
		{"profile//friends/./list", "profile/friends/list"},
		{"/profile/friends/:user", "profile/friends/:user"},
		{"/profile/friends/{user}", "profile/friends/:user"},
		{"/test/:optional?", "test/:optional"},
		{"/test/{{optional}}", "test/:optional"},
		{"/test/*", "test/*"},
		{"/test/{...wildcard}", "test/*"},
	}

	for _, tt := range tests {
		got, err := Key(tt.input)
		if err != nil {
			t.Errorf("Key(%q) unexpected error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestKeyErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"/a\\b", ErrBackslashInPath},
		{"/a/\x00", ErrNullByteInPath},
		{"/a/../b", ErrPathEscapesRoot},
		{"/docs/*/more", ErrWildcardNotLast},
		{"/a/{b", ErrInvalidSegment},
	}

	for _, tt := range tests {
		if _, err := Key(tt.input); !errors.Is(err, tt.wantErr) {
			t.Errorf("Key(%q) error = %v, want %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestRenderKeepsOptionalMarker(t *testing.T) {
	segs, err := Parse("/test/{{optional}}")
	if err != nil {
		t.Fatal(err)
	}
	if got := Render(segs); got != "test/:optional?" {
		t.Errorf("Render = %q, want %q", got, "test/:optional?")
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		parent, child, want string
	}{
		{"", "", ""},
		{"", "about", "about"},
		{"profile", "", "profile"},
		{"/profile/", "/friends", "profile/friends"},
	}
	for _, tt := range tests {
		if got := Join(tt.parent, tt.child); got != tt.want {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.parent, tt.child, got, tt.want)
		}
	}
}

func TestSplitURL(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"/", nil},
		{"/projects/123/", []string{"projects", "123"}},
		{"/blog//post", []string{"blog", "post"}},
		{"/blog/posts/../other", []string{"blog", "other"}},
		{"/files/a%20b?x=1", []string{"files", "a b"}},
	}

	for _, tt := range tests {
		got, err := SplitURL(tt.input)
		if err != nil {
			t.Errorf("SplitURL(%q) unexpected error = %v", tt.input, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitURL(%q) = %#v, want %#v", tt.input, got, tt.want)
		}
	}

	for input, wantErr := range map[string]error{
		"/../secret": ErrPathEscapesRoot,
		"/a%00":      ErrNullByteInPath,
		"/a%GG":      ErrInvalidPercentEscape,
		"/a\\b":      ErrBackslashInPath,
	} {
		if _, err := SplitURL(input); err != wantErr {
			t.Errorf("SplitURL(%q) error = %v, want %v", input, err, wantErr)
		}
	}
}

func TestParamKindText(t *testing.T) {
	for text, want := range map[string]ParamKind{
		"req": ParamRequired, "Required": ParamRequired,
		"opt": ParamOptional, "optional": ParamOptional,
		"*": ParamWildcard, "wildcard": ParamWildcard,
	} {
		var k ParamKind
		if err := k.UnmarshalText([]byte(text)); err != nil {
			t.Errorf("UnmarshalText(%q) error = %v", text, err)
			continue
		}
		if k != want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", text, k, want)
		}
	}

	var k ParamKind
	if err := k.UnmarshalText([]byte("sometimes")); err == nil {
		t.Error("expected error for unknown kind")
	}
}
