// Package mappack keeps the map pack current. Unlike the bot pack it has no
// patch chain: an outdated pack is downloaded in full, then only the maps
// whose revision changed are fetched as individual release assets.
package mappack

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bianoble/botpack-sync/internal/fetch"
	"github.com/bianoble/botpack-sync/internal/github"
	"github.com/bianoble/botpack-sync/internal/outcome"
	"github.com/bianoble/botpack-sync/internal/progress"
	"github.com/bianoble/botpack-sync/internal/sandbox"
)

// Metadata is the subset of the release API the updater needs.
type Metadata interface {
	LatestReleaseTagName(ctx context.Context, owner, name string) (string, error)
	LatestReleaseAssets(ctx context.Context, owner, name string) ([]github.Asset, error)
}

// Request identifies the map pack and its checkout directory.
type Request struct {
	Owner string
	Name  string
	Dir   string
}

// HydrateResult lists what Hydrate did with each changed map.
type HydrateResult struct {
	Fetched []string
	// Unmatched maps had no release asset with the same file name.
	Unmatched []string
	// Failed maps could not be downloaded or written.
	Failed []string
}

// Updater compares and hydrates a map pack checkout.
type Updater struct {
	Metadata Metadata
	Fetch    *fetch.Client
	Progress progress.Sink
	Logger   *slog.Logger
}

// RemoteRevision returns the latest release's revision: the tag name
// without its one-character prefix.
func (u *Updater) RemoteRevision(ctx context.Context, req Request) (uint64, error) {
	tag, err := u.Metadata.LatestReleaseTagName(ctx, req.Owner, req.Name)
	if err != nil {
		return 0, err
	}
	if len(tag) < 2 {
		return 0, fmt.Errorf("map pack release tag %q: %w", tag, github.ErrBadTag)
	}
	rev, err := strconv.ParseUint(tag[1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("map pack release tag %q: %w: %v", tag, github.ErrBadTag, err)
	}
	return rev, nil
}

// NeedsUpdate compares the local index against the latest release.
func (u *Updater) NeedsUpdate(ctx context.Context, req Request) outcome.Outcome {
	logger := u.logger()
	local, found, err := LoadIndex(req.Dir)
	if err != nil {
		logger.Warn("map pack index unreadable", "path", req.Dir, "err", err)
		return outcome.FullDownload()
	}
	if !found {
		return outcome.FullDownload()
	}

	remote, err := u.RemoteRevision(ctx, req)
	if err != nil {
		logger.Warn("failed to fetch map pack release", "err", err)
		return outcome.Skipf("Failed to check the map pack for updates: %v", err)
	}
	if remote > local.Revision {
		logger.Info("map pack outdated", "local", local.Revision, "remote", remote)
		return outcome.FullDownload()
	}
	return outcome.Skip("up to date")
}

// Hydrate downloads every map that changed relative to prev, matching
// manifest paths to release assets by file name. Failures of single maps
// are logged and reported in the result.
func (u *Updater) Hydrate(ctx context.Context, req Request, prev *Manifest) (HydrateResult, error) {
	var res HydrateResult
	logger := u.logger()
	report := progress.Reporter{Sink: u.Progress, Logger: logger}

	next, found, err := LoadIndex(req.Dir)
	if err != nil {
		return res, err
	}
	if !found {
		return res, fmt.Errorf("map pack index not found in %s", req.Dir)
	}

	changed := Changed(prev, next)
	if len(changed) == 0 {
		report.Report(100, "No maps to download")
		return res, nil
	}

	assets, err := u.Metadata.LatestReleaseAssets(ctx, req.Owner, req.Name)
	if err != nil {
		return res, fmt.Errorf("listing map pack assets: %w", err)
	}
	byName := make(map[string]github.Asset, len(assets))
	for _, a := range assets {
		byName[a.Name] = a
	}

	for i, p := range changed {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		report.Report(float64(i)/float64(len(changed))*100, fmt.Sprintf("Downloading %s (%d/%d)", p, i+1, len(changed)))

		asset, ok := byName[path.Base(strings.ReplaceAll(p, `\`, "/"))]
		if !ok {
			logger.Warn("no release asset for map", "path", p)
			res.Unmatched = append(res.Unmatched, p)
			continue
		}
		if err := u.fetchAsset(ctx, req.Dir, p, asset.URL); err != nil {
			logger.Warn("failed to download map", "path", p, "url", asset.URL, "err", err)
			res.Failed = append(res.Failed, p)
			continue
		}
		res.Fetched = append(res.Fetched, p)
	}

	report.Report(100, fmt.Sprintf("Downloaded %d maps", len(res.Fetched)))
	logger.Info("hydrated map pack", "fetched", len(res.Fetched), "unmatched", len(res.Unmatched), "failed", len(res.Failed))
	return res, nil
}

func (u *Updater) fetchAsset(ctx context.Context, dir, rel, url string) error {
	fc := u.Fetch
	if fc == nil {
		fc = fetch.New(nil, "")
	}
	body, err := fc.Open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	rel = filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/"))
	return sandbox.SafeWriteFrom(dir, rel, body, 0644)
}

func (u *Updater) logger() *slog.Logger {
	if u.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return u.Logger
}
