package engine

import (
	"context"

	"github.com/bianoble/botpack-sync/internal/download"
	"github.com/bianoble/botpack-sync/internal/mappack"
	"github.com/bianoble/botpack-sync/internal/outcome"
)

// UpdateMapPack downloads a newer map pack if one exists, then fetches the
// maps whose revisions changed from the release assets.
func (e *Engine) UpdateMapPack(ctx context.Context) MapPackResult {
	logger := e.run("maps")
	pack := e.Config.Mappack
	checkout := e.Config.CheckoutDir(pack)
	u := &mappack.Updater{
		Metadata: e.Metadata,
		Fetch:    e.Fetch,
		Progress: e.Progress,
		Logger:   logger,
	}
	req := mappack.Request{Owner: pack.Owner, Name: pack.Name, Dir: checkout}

	old, found, err := mappack.LoadIndex(checkout)
	if err != nil {
		logger.Warn("map pack index unreadable", "path", checkout, "err", err)
		old, found = nil, false
	}

	check := u.NeedsUpdate(ctx, req)
	if !check.NeedsFullDownload() {
		if found {
			e.registerFolder(e.Config.PackDir(pack), logger)
		}
		return MapPackResult{Outcome: check}
	}

	result := e.downloader(logger).Download(ctx, download.Request{
		Owner:  pack.Owner,
		Name:   pack.Name,
		Branch: pack.Branch,
		Dir:    e.Config.PackDir(pack),
		Label:  "map pack",
	})
	if !result.IsSuccess() {
		return MapPackResult{Outcome: result}
	}

	if _, ok, err := mappack.LoadIndex(checkout); err != nil || !ok {
		logger.Warn("map pack index missing after download", "path", checkout, "err", err)
		return MapPackResult{Outcome: outcome.Skip("couldn't find revision number in map pack")}
	}

	hydrated, err := u.Hydrate(ctx, req, old)
	if err != nil {
		logger.Warn("failed to download changed maps", "err", err)
		return MapPackResult{Outcome: outcome.Skipf("Failed to download the maps: %v", err), Hydrate: hydrated}
	}

	e.registerFolder(e.Config.PackDir(pack), logger)
	return MapPackResult{Outcome: outcome.Succeed("Updated the map pack!"), Hydrate: hydrated}
}

// MapPackRevision returns the revision of the local map pack index.
func (e *Engine) MapPackRevision() (uint64, bool, error) {
	m, found, err := mappack.LoadIndex(e.Config.CheckoutDir(e.Config.Mappack))
	if err != nil || !found {
		return 0, false, err
	}
	return m.Revision, true, nil
}
