package engine

import (
	"context"
	"log/slog"

	"github.com/bianoble/botpack-sync/internal/download"
	"github.com/bianoble/botpack-sync/internal/outcome"
	"github.com/bianoble/botpack-sync/internal/patch"
)

// EnsureBotpack brings the bot pack up to date, patching incrementally when
// possible and falling back to a full download when patching cannot start.
func (e *Engine) EnsureBotpack(ctx context.Context) UpdateResult {
	logger := e.run("update")
	pack := e.Config.Botpack

	rep := e.patcher(logger).Run(ctx, patch.Request{
		Owner: pack.Owner,
		Name:  pack.Name,
		Dir:   e.Config.CheckoutDir(pack),
	})
	res := UpdateResult{Outcome: rep.Outcome, Patch: rep}

	fallback := rep.Outcome.NeedsFullDownload() ||
		(rep.Failed && e.Config.Tuning.FullDownloadOnPatchFailure)
	if fallback {
		logger.Info("falling back to full download", "patch_outcome", rep.Outcome.String())
		res.Outcome = e.downloadBotpack(ctx, logger)
		res.FullDownload = true
	}

	if res.Outcome.IsSuccess() {
		e.registerFolder(e.Config.PackDir(pack), logger)
	}
	return res
}

// DownloadBotpack replaces the bot pack with a fresh snapshot and records
// the latest release tag.
func (e *Engine) DownloadBotpack(ctx context.Context) outcome.Outcome {
	logger := e.run("download")
	result := e.downloadBotpack(ctx, logger)
	if result.IsSuccess() {
		e.registerFolder(e.Config.PackDir(e.Config.Botpack), logger)
	}
	return result
}

func (e *Engine) downloadBotpack(ctx context.Context, logger *slog.Logger) outcome.Outcome {
	pack := e.Config.Botpack
	return e.downloader(logger).Download(ctx, download.Request{
		Owner:     pack.Owner,
		Name:      pack.Name,
		Branch:    pack.Branch,
		Dir:       e.Config.PackDir(pack),
		Clobber:   true,
		RecordTag: true,
		Label:     "botpack",
	})
}
