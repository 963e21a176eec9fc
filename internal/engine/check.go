package engine

import "context"

// Check compares the recorded bot pack tag with the latest release.
func (e *Engine) Check(ctx context.Context) CheckResult {
	logger := e.run("check")
	pack := e.Config.Botpack
	var res CheckResult

	local, ok, err := e.Store.CurrentTag()
	if err != nil {
		logger.Warn("persisted tag is unreadable", "err", err)
	}
	res.Local, res.HasLocal = local, ok && err == nil
	res.CheckoutPresent = isDir(e.Config.CheckoutDir(pack))

	res.Remote, res.RemoteErr = e.Metadata.LatestReleaseTag(ctx, pack.Owner, pack.Name)
	if res.RemoteErr != nil {
		logger.Warn("failed to fetch latest release", "err", res.RemoteErr)
	}

	res.UpToDate = !res.HasLocal || res.RemoteErr != nil || res.Local == res.Remote
	return res
}

// IsBotpackUpToDate reports false only when a local tag exists, the latest
// release is known, and the two differ.
func (e *Engine) IsBotpackUpToDate(ctx context.Context) bool {
	return e.Check(ctx).UpToDate
}
