// Package patch brings a checkout up to date by applying the per-revision
// incremental archives in order.
//
// Each step extracts one archive over the checkout, removes the files its
// deletion manifest lists, and then persists the step's tag. The persisted
// tag is therefore always the last fully applied step, and a later run
// resumes from it.
package patch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/bianoble/botpack-sync/internal/archive"
	"github.com/bianoble/botpack-sync/internal/cache"
	"github.com/bianoble/botpack-sync/internal/fetch"
	"github.com/bianoble/botpack-sync/internal/outcome"
	"github.com/bianoble/botpack-sync/internal/progress"
	"github.com/bianoble/botpack-sync/internal/revision"
	"github.com/bianoble/botpack-sync/internal/sandbox"
	"github.com/bianoble/botpack-sync/internal/state"
)

// DefaultMaxGap is the largest number of patches applied incrementally.
const DefaultMaxGap = 50

// Metadata is the subset of the release API the engine needs.
type Metadata interface {
	LatestReleaseTag(ctx context.Context, owner, name string) (revision.Tag, error)
	PatchURL(owner, name string, tag revision.Tag) string
}

// Request identifies the pack and its checkout directory.
type Request struct {
	Owner string
	Name  string
	Dir   string
}

// Engine applies patch chains.
type Engine struct {
	Metadata  Metadata
	Fetch     *fetch.Client
	Extractor *archive.Extractor
	Tags      state.TagStore
	// Cache, when set, keeps downloaded archives until they are applied.
	Cache    *cache.Cache
	Progress progress.Sink
	Logger   *slog.Logger
	// MaxGap defaults to DefaultMaxGap.
	MaxGap uint32
	// PrefetchWindow bounds how many downloads run ahead of the step being
	// applied. Zero starts the whole chain at once.
	PrefetchWindow int
}

// Report describes a finished Run.
type Report struct {
	Outcome  outcome.Outcome
	Local    revision.Tag
	HasLocal bool
	Remote   revision.Tag

	// RemoteErr is set when the latest release could not be looked up.
	RemoteErr error

	// Planned is the number of patches in the chain, Applied how many were
	// persisted.
	Planned int
	Applied int
	// Failed is set when a chain was started but did not reach Remote.
	Failed bool
}

type download struct {
	data []byte
	err  error
}

// Update checks the remote tag and applies every missing patch in order.
func (e *Engine) Update(ctx context.Context, req Request) outcome.Outcome {
	return e.Run(ctx, req).Outcome
}

// Run is Update with the details of what happened.
func (e *Engine) Run(ctx context.Context, req Request) Report {
	logger := e.logger().With("repo", req.Owner+"/"+req.Name)

	local, ok, err := e.Tags.CurrentTag()
	if err != nil {
		logger.Warn("persisted tag is unreadable", "err", err)
		return Report{Outcome: outcome.FullDownload()}
	}
	if !ok {
		logger.Info("no local revision recorded")
		return Report{Outcome: outcome.FullDownload()}
	}
	rep := Report{Local: local, HasLocal: true}

	remote, err := e.Metadata.LatestReleaseTag(ctx, req.Owner, req.Name)
	if err != nil {
		logger.Warn("failed to fetch latest release", "err", err)
		rep.Outcome = outcome.Skipf("Failed to check for updates: %v", err)
		rep.RemoteErr = err
		return rep
	}
	rep.Remote = remote

	if result, done := e.decide(local, remote, req.Dir); done {
		logger.Info("no patching", "local", local.String(), "remote", remote.String(), "outcome", result.Kind.String())
		rep.Outcome = result
		return rep
	}

	rep.Planned = int(local.Gap(remote))
	rep.Outcome, rep.Applied = e.applyChain(ctx, req, local, remote, logger)
	rep.Failed = rep.Applied < rep.Planned
	return rep
}

// decide runs the pre-chain checks. done is false when the chain should be
// applied.
func (e *Engine) decide(local, remote revision.Tag, dir string) (result outcome.Outcome, done bool) {
	switch {
	case remote == local:
		return outcome.Skip("already up to date"), true
	case remote < local:
		return outcome.Skip("local revision is ahead of remote"), true
	case local.Gap(remote) > e.maxGap():
		return outcome.FullDownload(), true
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return outcome.FullDownload(), true
	}
	return outcome.Outcome{}, false
}

func (e *Engine) applyChain(ctx context.Context, req Request, local, remote revision.Tag, logger *slog.Logger) (outcome.Outcome, int) {
	report := progress.Reporter{Sink: e.Progress, Logger: logger}
	tags := local.Range(remote)
	n := len(tags)
	logger.Info("applying patch chain", "from", local.String(), "to", remote.String(), "patches", n)

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]chan download, n)
	for i := range results {
		results[i] = make(chan download, 1)
	}
	launch := func(i int) {
		if i >= n {
			return
		}
		url := e.Metadata.PatchURL(req.Owner, req.Name, tags[i])
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := e.obtain(ctx, url, logger)
			results[i] <- download{data: data, err: err}
		}()
	}

	window := e.PrefetchWindow
	if window <= 0 || window > n {
		window = n
	}
	for i := 0; i < window; i++ {
		launch(i)
	}

	applied := 0
	var failure outcome.Outcome
	for i, tag := range tags {
		k := float64(i + 1)
		url := e.Metadata.PatchURL(req.Owner, req.Name, tag)
		stepLog := logger.With("tag", tag.String())

		report.Report((k-1)/float64(n)*100, fmt.Sprintf("Downloading patch %s (%d/%d)...", tag, i+1, n))
		var dl download
		select {
		case dl = <-results[i]:
		case <-ctx.Done():
			dl = download{err: ctx.Err()}
		}
		if dl.err != nil {
			stepLog.Warn("patch download failed", "url", url, "err", dl.err)
			failure = outcome.Skipf("Failed to download patch %s: %v. Applied %d of %d patches.", tag, dl.err, applied, n)
			break
		}

		report.Report((k-0.5)/float64(n)*100, fmt.Sprintf("Applying patch %s (%d/%d)...", tag, i+1, n))
		err := e.applyStep(ctx, req.Dir, tag, dl.data, report, (k-0.5)/float64(n)*100, stepLog)
		// Applied archives are no longer needed and corrupt ones must be
		// fetched again.
		if err == nil || errors.Is(err, archive.ErrInvalidArchive) {
			e.dropCached(url, stepLog)
		}
		if err != nil {
			failure = outcome.Skipf("Failed to apply patch %s: %v. Applied %d of %d patches.", tag, err, applied, n)
			break
		}
		applied++
		launch(i + window)
	}

	if applied > 0 {
		removed, err := sandbox.PruneEmptyDirs(req.Dir)
		if err != nil {
			logger.Warn("failed to prune some empty directories", "path", req.Dir, "err", err)
		}
		logger.Debug("pruned empty directories", "count", len(removed))
	}

	if applied < n {
		return failure, applied
	}
	report.Report(100, "Done")
	logger.Info("patch chain complete", "tag", remote.String())
	return outcome.Succeed("Updated the botpack!"), applied
}

// applyStep extracts one patch, performs its deletions and checkpoints the
// tag. Any returned error leaves the persisted tag at the previous step.
func (e *Engine) applyStep(ctx context.Context, dir string, tag revision.Tag, data []byte, report progress.Reporter, percent float64, logger *slog.Logger) error {
	// A manifest left by an interrupted run belongs to an applied step.
	if err := removeManifest(dir); err != nil {
		return fmt.Errorf("removing stale deletion manifest: %w", err)
	}

	if _, err := e.extractor().ExtractBytes(ctx, data, dir, archive.Options{Overwrite: true}); err != nil {
		logger.Warn("patch extraction failed", "path", dir, "err", err)
		return err
	}

	paths, found, err := ReadManifest(dir)
	if err != nil {
		logger.Warn("deletion manifest unreadable", "path", dir, "err", err)
		return err
	}
	if found {
		deleted := 0
		for _, p := range paths {
			report.Report(percent, "Deleting "+p)
			if err := sandbox.SafeRemove(dir, p); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					logger.Debug("file listed for deletion already absent", "path", p)
				} else {
					logger.Warn("failed to delete file", "path", p, "err", err)
				}
				continue
			}
			deleted++
		}
		report.Report(percent, fmt.Sprintf("Deleted %d files", deleted))
		logger.Info("processed deletion manifest", "listed", len(paths), "deleted", deleted)
	}

	if err := e.Tags.SetTag(tag); err != nil {
		logger.Warn("failed to persist tag", "err", err)
		return fmt.Errorf("recording %s: %w", tag, err)
	}

	if err := removeManifest(dir); err != nil {
		logger.Warn("failed to remove deletion manifest", "path", dir, "err", err)
	}
	return nil
}

// obtain returns the archive at url from the cache or the network.
func (e *Engine) obtain(ctx context.Context, url string, logger *slog.Logger) ([]byte, error) {
	if e.Cache != nil {
		data, found, err := e.Cache.Get(url)
		if err != nil {
			logger.Warn("cache read failed", "url", url, "err", err)
		}
		if found {
			logger.Debug("using cached patch", "url", url)
			return data, nil
		}
	}

	data, err := e.fetcher().Stream(ctx, url, 0, nil)
	if err != nil {
		return nil, err
	}
	if e.Cache != nil {
		if err := e.Cache.Put(url, data); err != nil {
			logger.Warn("cache write failed", "url", url, "err", err)
		}
	}
	return data, nil
}

func (e *Engine) dropCached(url string, logger *slog.Logger) {
	if e.Cache == nil {
		return
	}
	if err := e.Cache.Delete(url); err != nil {
		logger.Warn("failed to drop cached patch", "url", url, "err", err)
	}
}

func (e *Engine) maxGap() uint32 {
	if e.MaxGap == 0 {
		return DefaultMaxGap
	}
	return e.MaxGap
}

func (e *Engine) fetcher() *fetch.Client {
	if e.Fetch == nil {
		return fetch.New(nil, "")
	}
	return e.Fetch
}

func (e *Engine) extractor() *archive.Extractor {
	if e.Extractor == nil {
		return &archive.Extractor{Logger: e.Logger}
	}
	return e.Extractor
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}
