package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/bianoble/botpack-sync/internal/config"
	"github.com/bianoble/botpack-sync/internal/engine"
	"github.com/bianoble/botpack-sync/internal/outcome"
)

var errOffline = errors.New("no internet connection")

// resolvedConfigPath returns --config or the platform default.
func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

// loadConfig reads and validates the config file.
func loadConfig() (*config.Config, error) {
	path := resolvedConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// newLogger builds the stderr log handler for the verbosity flags.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newEngine loads the config and wires an engine with the CLI's progress
// renderer. The returned renderer must be finished after the operation.
func newEngine() (*engine.Engine, *renderer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	r := newRenderer(os.Stdout, !quiet && !noProgress)
	eng, err := engine.New(cfg, engine.Options{Progress: r, Logger: newLogger()})
	if err != nil {
		return nil, nil, err
	}
	return eng, r, nil
}

// requireOnline fails fast when the connectivity probe finds no network.
func requireOnline(ctx context.Context, eng *engine.Engine) error {
	if !eng.IsOnline(ctx) {
		return errOffline
	}
	return nil
}

// report prints an outcome and converts non-success into an error unless
// skipping is an acceptable result.
func report(o outcome.Outcome, skipOK bool) error {
	switch o.Kind {
	case outcome.Success:
		info("%s", o.Message)
		return nil
	case outcome.Skipped:
		info("%s", o.Message)
		if skipOK {
			return nil
		}
		return fmt.Errorf("skipped: %s", o.Message)
	default:
		return fmt.Errorf("%s", o.Message)
	}
}

func humanSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// printQuiet returns true if only errors should be shown.
func printQuiet() bool {
	return quiet
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
