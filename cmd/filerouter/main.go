package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filerouter/internal/config"
	"github.com/vango-dev/filerouter/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		errors.PrintError(stderr, err)
		return 1
	}
	return 0
}

// cli holds state shared by subcommands after the persistent pre-run.
type cli struct {
	configFile string
	envFile    string
	noColor    bool
	verbose    bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "filerouter",
		Short: "Compile a routes directory into a route table and menu",
		Long: `filerouter turns a directory of page files into a nested route table,
merges it with the server's view map and projects a navigation menu.

File conventions:
  about.go          → about
  users/{id}.go     → users/:id
  docs/{{page}}.go  → docs/:page?
  files/{...p}.go   → files/*
  $layout.go        → layout wrapping the directory
  $index.go         → index route of the directory
  _drafts/          → ignored`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "config file (default: ./"+config.ConfigFileName+")")
	flags.StringVar(&c.envFile, "env-file", "", "dotenv file loaded before reading FILEROUTER_* variables (default: ./.env)")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	flags.String("routes", config.DefaultRoutesDir, "routes directory")
	flags.String("views", "", "server view map snapshot (.json, .yaml or .toml)")
	flags.String("locale", config.DefaultLocale, "menu collation locale")
	flags.String("log", config.DefaultLogFilename, "log file")
	flags.String("level", "info", "log level")
	flags.StringSlice("ext", []string{".go"}, "route file extensions")
	flags.Int("cache", config.DefaultCacheSize, "parsed module cache size")
	flags.String("layout", "$layout", "layout file marker")
	flags.String("index", "$index", "index file marker")

	root.AddCommand(
		genCmd(c),
		menuCmd(c),
		checkCmd(c),
		serveCmd(c),
		viewsCmd(c),
		initCmd(c),
		versionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.noColor {
		errors.DisableColors()
		colorOutput = false
	}
	cfg, err := config.Load(config.LoadOptions{
		File:    c.configFile,
		EnvFile: c.envFile,
		Flags:   cmd.Flags(),
	})
	if err != nil {
		return err
	}
	c.cfg = cfg

	if err := configureLogger(cfg.LogPath(), cfg.Log, c.verbose); err != nil {
		return err
	}
	return nil
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("\033[33m", "⚠"), fmt.Sprintf(format, args...))
}

var colorOutput = true

func paint(code, text string) string {
	if !colorOutput {
		return text
	}
	return code + text + "\033[0m"
}
