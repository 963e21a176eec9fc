// Package botpacksync provides the public Go library API for botpack-sync.
//
// botpack-sync keeps a local checkout of the RLBot bot pack and map pack
// current, applying incremental release patches when possible and falling
// back to full snapshot downloads. This package is the entry point for
// launchers and other programs that embed the sync engine.
//
// # Basic Usage
//
//	client, err := botpacksync.New(botpacksync.Options{
//	    Progress: botpacksync.ProgressFunc(func(pct float64, status string) error {
//	        fmt.Printf("%3.0f%% %s\n", pct, status)
//	        return nil
//	    }),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Patch or download the bot pack
//	result := client.EnsureBotpack(ctx)
//
//	// Refresh the map pack
//	maps := client.UpdateMapPack(ctx)
package botpacksync

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bianoble/botpack-sync/internal/config"
	"github.com/bianoble/botpack-sync/internal/engine"
)

// BotpackUpdater keeps the bot pack current.
type BotpackUpdater interface {
	EnsureBotpack(ctx context.Context) UpdateResult
	DownloadBotpack(ctx context.Context) Outcome
}

// Checker compares the installed bot pack with the latest release.
type Checker interface {
	Check(ctx context.Context) CheckResult
	IsBotpackUpToDate(ctx context.Context) bool
}

// MapPackUpdater keeps the map pack current.
type MapPackUpdater interface {
	UpdateMapPack(ctx context.Context) MapPackResult
	MapPackRevision() (uint64, bool, error)
}

// Options configures a botpack-sync client.
type Options struct {
	// Config is used as is when set. Otherwise the file at ConfigPath is
	// loaded over the defaults.
	Config *Config

	// ConfigPath is the path to the config file. Default: the platform
	// user config directory, or BOTPACK_SYNC_CONFIG.
	ConfigPath string

	// HTTPClient sends every request. Default: http.DefaultClient.
	HTTPClient *http.Client

	// Progress receives progress events. Delivery failures are logged and
	// never abort an operation.
	Progress ProgressSink

	// Logger receives structured logs. Nil discards them.
	Logger *slog.Logger
}

// Client is the main entry point for the botpack-sync library.
// It implements BotpackUpdater, Checker, and MapPackUpdater.
// A Client must not run two operations at once.
type Client struct {
	engine *engine.Engine
}

var (
	_ BotpackUpdater = (*Client)(nil)
	_ Checker        = (*Client)(nil)
	_ MapPackUpdater = (*Client)(nil)
)

// New creates a new botpack-sync Client.
func New(opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		path := opts.ConfigPath
		if path == "" {
			path = config.DefaultPath()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, &config.ValidationError{Errors: errs}
	}

	var eopts engine.Options
	eopts.Progress = opts.Progress
	eopts.Logger = opts.Logger
	if opts.HTTPClient != nil {
		eopts.HTTP = opts.HTTPClient
	}

	eng, err := engine.New(cfg, eopts)
	if err != nil {
		return nil, fmt.Errorf("initializing engine: %w", err)
	}
	return &Client{engine: eng}, nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// Config returns the configuration the client runs with.
func (c *Client) Config() *Config {
	return c.engine.Config
}

// IsOnline runs the connectivity probe configured for the client.
func (c *Client) IsOnline(ctx context.Context) bool {
	return c.engine.IsOnline(ctx)
}

// EnsureBotpack brings the bot pack up to date.
func (c *Client) EnsureBotpack(ctx context.Context) UpdateResult {
	return c.engine.EnsureBotpack(ctx)
}

// DownloadBotpack replaces the bot pack with a fresh snapshot.
func (c *Client) DownloadBotpack(ctx context.Context) Outcome {
	return c.engine.DownloadBotpack(ctx)
}

// Check compares the installed bot pack with the latest release.
func (c *Client) Check(ctx context.Context) CheckResult {
	return c.engine.Check(ctx)
}

// IsBotpackUpToDate reports false only when a known newer release exists.
func (c *Client) IsBotpackUpToDate(ctx context.Context) bool {
	return c.engine.IsBotpackUpToDate(ctx)
}

// UpdateMapPack refreshes the map pack and its changed maps.
func (c *Client) UpdateMapPack(ctx context.Context) MapPackResult {
	return c.engine.UpdateMapPack(ctx)
}

// MapPackRevision returns the local map pack revision, if installed.
func (c *Client) MapPackRevision() (uint64, bool, error) {
	return c.engine.MapPackRevision()
}

// Status describes local state without network access.
func (c *Client) Status() (StatusResult, error) {
	return c.engine.Status()
}

// Prune removes empty directories from the bot pack checkout.
func (c *Client) Prune() (PruneResult, error) {
	return c.engine.Prune()
}

// CacheSize returns the size of the patch archive cache in bytes.
func (c *Client) CacheSize() (int64, error) {
	return c.engine.CacheSize()
}

// CleanCache empties the patch archive cache.
func (c *Client) CleanCache() error {
	return c.engine.CacheClean()
}
