// Command prerender snapshots client-side-rendered pages to static files.
//
// Usage:
//
//	prerender -config prerender.yaml   # render per YAML config
//	prerender -root .                  # zero-config run from a project root
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/prerender"
)

func main() {
	configPath := flag.String("config", "", "path to prerender.yaml config file")
	root := flag.String("root", "", "project root for a zero-config run")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *root); err != nil {
		logger.Error("prerender: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, root string) error {
	var cfg *prerender.Config

	switch {
	case configPath != "":
		var err error
		cfg, err = prerender.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	case root != "":
		cfg = prerender.DefaultConfig(root)
	default:
		fmt.Fprintln(os.Stderr, "usage: prerender -config <file> | -root <dir>")
		os.Exit(1)
	}

	return prerender.New(cfg, logger).Run(ctx)
}
