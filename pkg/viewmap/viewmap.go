// Package viewmap reads server view map snapshots.
//
// A snapshot maps route templates to view metadata and may be stored as
// JSON, YAML or TOML:
//
//	{
//	  "/profile/friends/:user": {
//	    "title": "User",
//	    "params": {":user": "req"},
//	    "menu": {"order": 2, "icon": "user"}
//	  }
//	}
//
// Param kinds are "req", "opt" or "*" (long forms "required", "optional"
// and "wildcard" are accepted too).
package viewmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/filerouter/pkg/router"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for file extensions with no known encoding.
var ErrUnknownFormat = errors.New("unknown view map format")

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Load reads a snapshot from disk. An empty path yields an empty map.
func Load(path string) (router.ServerViews, error) {
	if path == "" {
		return router.ServerViews{}, nil
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read view map %s: %w", path, err)
	}
	views, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse view map %s: %w", path, err)
	}
	return views, nil
}

// LoadFS is Load over an fs.FS.
func LoadFS(fsys fs.FS, name string) (router.ServerViews, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read view map %s: %w", name, err)
	}
	defer f.Close()

	views, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse view map %s: %w", name, err)
	}
	return views, nil
}

// Decode reads one complete snapshot from r. An empty document decodes to
// an empty map.
func Decode(r io.Reader, format Format) (router.ServerViews, error) {
	views := router.ServerViews{}

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&views); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&views); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&views)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown view map fields: %v", undecoded)
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if views == nil {
		views = router.ServerViews{}
	}
	return views, nil
}

// Encode writes views in format. Used by the CLI to convert snapshots.
func Encode(w io.Writer, views router.ServerViews, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(views)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
