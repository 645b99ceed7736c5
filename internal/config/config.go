package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/filerouter/internal/errors"
)

const (
	// ConfigFileName is looked up in the project directory.
	ConfigFileName = "filerouter.yaml"

	// EnvPrefix namespaces environment overrides, e.g. FILEROUTER_ROUTES_DIR.
	EnvPrefix = "FILEROUTER"

	DefaultRoutesDir   = "routes"
	DefaultOutputDir   = "generated"
	DefaultLocale      = "en-US"
	DefaultServeAddr   = "localhost:8085"
	DefaultCacheSize   = 4096
	DefaultLogFilename = ".filerouter.log"
)

// Config is the filerouter.yaml schema.
type Config struct {
	Routes RoutesConfig `mapstructure:"routes" yaml:"routes"`
	Views  ViewsConfig  `mapstructure:"views" yaml:"views"`
	Menu   MenuConfig   `mapstructure:"menu" yaml:"menu"`
	Output OutputConfig `mapstructure:"output" yaml:"output"`
	Cache  CacheConfig  `mapstructure:"cache" yaml:"cache"`
	Serve  ServeConfig  `mapstructure:"serve" yaml:"serve"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`

	configPath string
	dir        string
}

// RoutesConfig describes the routes directory and its naming markers.
type RoutesConfig struct {
	Dir          string   `mapstructure:"dir" yaml:"dir"`
	Extensions   []string `mapstructure:"extensions" yaml:"extensions"`
	LayoutMarker string   `mapstructure:"layout_marker" yaml:"layout_marker"`
	IndexMarker  string   `mapstructure:"index_marker" yaml:"index_marker"`
}

// ViewsConfig points at the server view map snapshot. An empty File merges
// against an empty map.
type ViewsConfig struct {
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

type MenuConfig struct {
	Locale string `mapstructure:"locale" yaml:"locale"`
}

// OutputConfig controls where `filerouter gen` writes.
type OutputConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type CacheConfig struct {
	// Size is the number of parsed route files kept in memory.
	Size int `mapstructure:"size" yaml:"size"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig configures the rotating log file.
type LogConfig struct {
	Filename   string `mapstructure:"filename" yaml:"filename"`
	Level      string `mapstructure:"level" yaml:"level"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// New returns a Config holding every default.
func New() *Config {
	return &Config{
		Routes: RoutesConfig{
			Dir:          DefaultRoutesDir,
			Extensions:   []string{".go"},
			LayoutMarker: "$layout",
			IndexMarker:  "$index",
		},
		Menu:   MenuConfig{Locale: DefaultLocale},
		Output: OutputConfig{Dir: DefaultOutputDir},
		Cache:  CacheConfig{Size: DefaultCacheSize},
		Serve:  ServeConfig{Addr: DefaultServeAddr},
		Log: LogConfig{
			Filename:   DefaultLogFilename,
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
	}
}

// defaults flattens New() into viper keys so env overrides apply to every
// key, not only those present in the file.
func defaults() map[string]any {
	d := New()
	return map[string]any{
		"routes.dir":           d.Routes.Dir,
		"routes.extensions":    d.Routes.Extensions,
		"routes.layout_marker": d.Routes.LayoutMarker,
		"routes.index_marker":  d.Routes.IndexMarker,
		"views.file":           d.Views.File,
		"menu.locale":          d.Menu.Locale,
		"output.dir":           d.Output.Dir,
		"cache.size":           d.Cache.Size,
		"serve.addr":           d.Serve.Addr,
		"log.filename":         d.Log.Filename,
		"log.level":            d.Log.Level,
		"log.max_size":         d.Log.MaxSize,
		"log.max_backups":      d.Log.MaxBackups,
		"log.max_age":          d.Log.MaxAge,
		"log.compress":         d.Log.Compress,
	}
}

// FlagKeys maps CLI flag names to config keys.
var FlagKeys = map[string]string{
	"routes": "routes.dir",
	"views":  "views.file",
	"locale": "menu.locale",
	"out":    "output.dir",
	"addr":   "serve.addr",
	"log":    "log.filename",
	"level":  "log.level",
	"ext":    "routes.extensions",
	"cache":  "cache.size",
	"layout": "routes.layout_marker",
	"index":  "routes.index_marker",
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// Dir is the project directory. Default: the working directory.
	Dir string

	// File overrides <Dir>/filerouter.yaml. A missing explicit file is an
	// error; a missing default file is not.
	File string

	// EnvFile is a dotenv file loaded before the environment is read.
	// Default: <Dir>/.env, skipped when absent.
	EnvFile string

	// Flags are bound over file and env values when set by the user.
	Flags *pflag.FlagSet
}

// Load resolves configuration from, lowest precedence first: defaults,
// filerouter.yaml, .env and FILEROUTER_* variables, explicit flags.
func Load(opts LoadOptions) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.New("R101").Wrap(err)
		}
		dir = wd
	}

	if err := loadEnvFile(dir, opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	path := opts.File
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, ConfigFileName)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if explicit || !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("R101").
				WithDetail("Failed to read " + path).
				Wrap(err)
		}
		path = ""
	}

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errors.New("R102").Wrap(err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("R101").
			WithDetail("Failed to decode configuration").
			Wrap(err)
	}
	cfg.configPath = path
	cfg.dir = dir
	if path != "" {
		cfg.dir = filepath.Dir(path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(dir, name string) error {
	explicit := name != ""
	if !explicit {
		name = filepath.Join(dir, ".env")
	}
	if err := godotenv.Load(name); err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.New("R103").
			WithDetail("Failed to load " + name).
			Wrap(err)
	}
	return nil
}

// Validate checks value ranges and marker consistency.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New("R102").WithDetail(fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.Routes.Dir) == "" {
		return invalid("routes.dir must not be empty")
	}
	if len(c.Routes.Extensions) == 0 {
		return invalid("routes.extensions must list at least one extension")
	}
	for _, ext := range c.Routes.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return invalid("routes.extensions: %q must start with a dot", ext)
		}
	}
	if c.Routes.LayoutMarker == "" || c.Routes.IndexMarker == "" {
		return invalid("routes.layout_marker and routes.index_marker must not be empty")
	}
	if c.Routes.LayoutMarker == c.Routes.IndexMarker {
		return invalid("routes.layout_marker and routes.index_marker must differ (both %q)", c.Routes.LayoutMarker)
	}
	for _, marker := range []string{c.Routes.LayoutMarker, c.Routes.IndexMarker} {
		if strings.HasPrefix(marker, "_") || strings.ContainsAny(marker, "/{}") {
			return invalid("marker %q would not survive classification", marker)
		}
	}
	if c.Cache.Size < 0 {
		return invalid("cache.size must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	return nil
}

// ParseLevel accepts level names or numeric slog levels. Empty means info.
func ParseLevel(value string) (slog.Level, error) {
	level := strings.ToLower(strings.TrimSpace(value))
	switch level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n), nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown level %q", value)
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory relative paths are resolved against.
func (c *Config) Dir() string {
	return c.dir
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

func (c *Config) RoutesPath() string { return c.resolve(c.Routes.Dir) }

// ViewsPath is "" when no view map is configured.
func (c *Config) ViewsPath() string { return c.resolve(c.Views.File) }

func (c *Config) OutputPath() string { return c.resolve(c.Output.Dir) }

func (c *Config) LogPath() string { return c.resolve(c.Log.Filename) }

// SaveTo writes c as YAML.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("R401").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("R401").Wrap(err)
	}
	c.configPath = path
	c.dir = filepath.Dir(path)
	return nil
}

// Exists reports whether dir holds a filerouter.yaml.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir to the first directory holding a
// filerouter.yaml.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("R101").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'filerouter init' to create one")
		}
		dir = parent
	}
}
