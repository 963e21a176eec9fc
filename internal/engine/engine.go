// Package engine wires the sync components together from configuration and
// implements the top-level operations: keeping the bot pack current, the
// map pack flow, and local housekeeping.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/bianoble/botpack-sync/internal/archive"
	"github.com/bianoble/botpack-sync/internal/cache"
	"github.com/bianoble/botpack-sync/internal/config"
	"github.com/bianoble/botpack-sync/internal/download"
	"github.com/bianoble/botpack-sync/internal/fetch"
	"github.com/bianoble/botpack-sync/internal/github"
	"github.com/bianoble/botpack-sync/internal/online"
	"github.com/bianoble/botpack-sync/internal/patch"
	"github.com/bianoble/botpack-sync/internal/progress"
	"github.com/bianoble/botpack-sync/internal/state"
)

// Options supplies the collaborators that are not part of the config file.
type Options struct {
	HTTP     fetch.HTTPClient
	Progress progress.Sink
	Logger   *slog.Logger
	// Dialer overrides the connectivity probe's dialer.
	Dialer online.Dialer
}

// Engine performs sync operations for one configuration. Callers must not
// run two operations against the same content directory at once.
type Engine struct {
	Config   *config.Config
	Metadata *github.Client
	Fetch    *fetch.Client
	Store    *state.Store
	Cache    *cache.Cache
	Progress progress.Sink
	Logger   *slog.Logger
	Online   *online.Checker
}

// New builds an Engine from cfg.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c, err := cache.New(cfg.CachePath())
	if err != nil {
		return nil, err
	}

	// Only metadata requests carry the request timeout.
	meta := fetch.New(opts.HTTP, cfg.UserAgent)
	meta.Timeout = cfg.RequestTimeout
	downloads := &fetch.Client{HTTP: meta.HTTP, UserAgent: meta.UserAgent}

	return &Engine{
		Config: cfg,
		Metadata: &github.Client{
			Fetch:      meta,
			APIBaseURL: cfg.APIBaseURL,
			WebBaseURL: cfg.WebBaseURL,
			SizeScale:  cfg.Tuning.SizeScale,
		},
		Fetch:    downloads,
		Store:    state.NewStore(cfg.StatePath()),
		Cache:    c,
		Progress: opts.Progress,
		Logger:   logger,
		Online: &online.Checker{
			Addrs:   cfg.OnlineCheck.Addrs,
			Timeout: cfg.OnlineCheck.Timeout,
			Dialer:  opts.Dialer,
		},
	}, nil
}

// IsOnline runs the connectivity probe. It reports true when the probe is
// disabled.
func (e *Engine) IsOnline(ctx context.Context) bool {
	if !e.Config.OnlineCheck.IsEnabled() || config.EnvSkipOnlineCheck() {
		return true
	}
	return e.Online.Online(ctx)
}

// run returns a logger tagged with a fresh run id for one operation.
func (e *Engine) run(op string) *slog.Logger {
	return e.Logger.With("run", uuid.NewString(), "op", op)
}

func (e *Engine) extractor(logger *slog.Logger) *archive.Extractor {
	return &archive.Extractor{Logger: logger}
}

func (e *Engine) downloader(logger *slog.Logger) *download.Downloader {
	t := e.Config.Tuning
	return &download.Downloader{
		Metadata:  e.Metadata,
		Fetch:     e.Fetch,
		Extractor: e.extractor(logger),
		Tags:      e.Store,
		Progress:  e.Progress,
		Logger:    logger,
		Tuning: download.Tuning{
			CompressionRatio: t.CompressionRatio,
			FallbackSize:     t.FallbackSize,
			ProgressInterval: t.ProgressInterval,
		},
	}
}

func (e *Engine) patcher(logger *slog.Logger) *patch.Engine {
	return &patch.Engine{
		Metadata:       e.Metadata,
		Fetch:          e.Fetch,
		Extractor:      e.extractor(logger),
		Tags:           e.Store,
		Cache:          e.Cache,
		Progress:       e.Progress,
		Logger:         logger,
		MaxGap:         e.Config.Tuning.MaxPatchGap,
		PrefetchWindow: e.Config.Tuning.PrefetchWindow,
	}
}

// registerFolder marks dir visible in the state file. Failure is logged;
// the content itself is already in place.
func (e *Engine) registerFolder(dir string, logger *slog.Logger) {
	if err := e.Store.AddFolder(dir); err != nil {
		logger.Warn("failed to register folder", "path", dir, "err", err)
	}
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
