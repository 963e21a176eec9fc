// Package download fetches a full snapshot of a content pack and unpacks it
// into its folder.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bianoble/botpack-sync/internal/archive"
	"github.com/bianoble/botpack-sync/internal/fetch"
	"github.com/bianoble/botpack-sync/internal/outcome"
	"github.com/bianoble/botpack-sync/internal/progress"
	"github.com/bianoble/botpack-sync/internal/revision"
	"github.com/bianoble/botpack-sync/internal/state"
)

// Defaults for Tuning fields left at zero.
const (
	DefaultCompressionRatio = 0.62
	DefaultFallbackSize     = 170_000_000
	DefaultProgressInterval = 100 * time.Millisecond
)

// Metadata is the subset of the release API the downloader needs.
type Metadata interface {
	RepoSize(ctx context.Context, owner, name string) (int64, error)
	LatestReleaseTag(ctx context.Context, owner, name string) (revision.Tag, error)
	ZipballURL(owner, name, branch string) string
}

// Tuning calibrates progress reporting. These values only affect how the
// progress bar advances, never what is downloaded.
type Tuning struct {
	// CompressionRatio converts the repository size estimate into the
	// expected archive size.
	CompressionRatio float64
	// FallbackSize is used when the repository size cannot be fetched.
	FallbackSize int64
	// ProgressInterval is the minimum spacing of download progress events.
	ProgressInterval time.Duration
}

func (t Tuning) withDefaults() Tuning {
	if t.CompressionRatio <= 0 {
		t.CompressionRatio = DefaultCompressionRatio
	}
	if t.FallbackSize <= 0 {
		t.FallbackSize = DefaultFallbackSize
	}
	if t.ProgressInterval <= 0 {
		t.ProgressInterval = DefaultProgressInterval
	}
	return t
}

// Request describes one full download.
type Request struct {
	Owner  string
	Name   string
	Branch string
	// Dir receives the archive, which unpacks to Dir/<Name>-<Branch>.
	Dir string
	// Clobber removes Dir before extracting.
	Clobber bool
	// RecordTag persists the latest release tag after a successful download.
	RecordTag bool
	// Label names the pack in messages. Defaults to Name.
	Label string
}

// Downloader performs full snapshot downloads.
type Downloader struct {
	Metadata  Metadata
	Fetch     *fetch.Client
	Extractor *archive.Extractor
	Tags      state.TagStore
	Progress  progress.Sink
	Logger    *slog.Logger
	Tuning    Tuning
}

// Download fetches the branch archive of req.Owner/req.Name into memory
// and extracts it into req.Dir. Network and archive failures yield Skipped.
func (d *Downloader) Download(ctx context.Context, req Request) outcome.Outcome {
	logger := d.logger().With("repo", req.Owner+"/"+req.Name)
	report := progress.Reporter{Sink: d.Progress, Logger: logger}
	tuning := d.Tuning.withDefaults()
	label := req.Label
	if label == "" {
		label = req.Name
	}

	size, err := d.Metadata.RepoSize(ctx, req.Owner, req.Name)
	if err != nil {
		logger.Warn("repository size unavailable; using fallback estimate", "err", err, "fallback", tuning.FallbackSize)
		size = tuning.FallbackSize
	}
	estimate := int64(float64(size) * tuning.CompressionRatio)
	if estimate <= 0 {
		estimate = int64(float64(tuning.FallbackSize) * tuning.CompressionRatio)
	}

	url := d.Metadata.ZipballURL(req.Owner, req.Name, req.Branch)
	logger.Info("downloading snapshot", "url", url, "estimate", estimate)
	report.Report(0, fmt.Sprintf("Downloading the %s...", label))

	throttle := progress.NewThrottle(tuning.ProgressInterval)
	data, err := d.fetcher().Stream(ctx, url, estimate, func(received int64) {
		if !throttle.Ready() {
			return
		}
		report.Report(float64(received)/float64(estimate)*100,
			fmt.Sprintf("Downloading the %s: %s of about %s", label, humanize.Bytes(uint64(received)), humanize.Bytes(uint64(estimate))))
	})
	if err != nil {
		logger.Warn("snapshot download failed", "url", url, "err", err)
		return outcome.Skipf("Failed to download the %s: %v", label, err)
	}

	if req.Clobber {
		if _, statErr := os.Stat(req.Dir); statErr == nil {
			if rmErr := os.RemoveAll(req.Dir); rmErr != nil {
				logger.Warn("failed to remove old folder; extracting over it", "path", req.Dir, "err", rmErr)
			}
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			logger.Warn("failed to inspect old folder", "path", req.Dir, "err", statErr)
		}
	}

	report.Report(100, "Extracting zip...")
	if _, err := d.extractor().ExtractBytes(ctx, data, req.Dir, archive.Options{Overwrite: true}); err != nil {
		logger.Warn("snapshot extraction failed", "path", req.Dir, "err", err)
		return outcome.Skipf("Failed to extract the %s: %v", label, err)
	}

	done := fmt.Sprintf("Downloaded the %s!", label)
	if !req.RecordTag {
		return outcome.Succeed(done)
	}

	tag, err := d.Metadata.LatestReleaseTag(ctx, req.Owner, req.Name)
	if err != nil {
		logger.Warn("failed to resolve release tag after download", "err", err)
		return outcome.Succeed(fmt.Sprintf("%s However, its revision could not be determined: %v", done, err))
	}
	if d.Tags == nil {
		return outcome.Succeed(done)
	}
	if err := d.Tags.SetTag(tag); err != nil {
		logger.Warn("failed to persist release tag", "tag", tag.String(), "err", err)
		return outcome.Succeed(fmt.Sprintf("%s However, its revision could not be saved: %v", done, err))
	}
	logger.Info("recorded snapshot revision", "tag", tag.String())
	return outcome.Succeed(done)
}

func (d *Downloader) fetcher() *fetch.Client {
	if d.Fetch == nil {
		return fetch.New(nil, "")
	}
	return d.Fetch
}

func (d *Downloader) extractor() *archive.Extractor {
	if d.Extractor == nil {
		return &archive.Extractor{Logger: d.Logger}
	}
	return d.Extractor
}

func (d *Downloader) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.Logger
}
