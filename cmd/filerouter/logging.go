package main

import (
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vango-dev/filerouter/internal/config"
	"github.com/vango-dev/filerouter/internal/errors"
)

// configureLogger points slog.Default at a rotating log file. Terminal
// output stays reserved for results and coded diagnostics.
func configureLogger(path string, cfg config.LogConfig, verbose bool) error {
	if strings.TrimSpace(path) == "" {
		path = config.DefaultLogFilename
	}

	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return errors.New("R102").WithDetail("log.level: " + err.Error())
	}
	if verbose {
		level = slog.LevelDebug
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		AddSource: verbose,
		Level:     level,
	})
	slog.SetDefault(slog.New(handler).With("pid", os.Getpid()))
	return nil
}
