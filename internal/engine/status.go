package engine

// Status reads local state only.
func (e *Engine) Status() (StatusResult, error) {
	pack := e.Config.Botpack
	res := StatusResult{
		BotpackDir:      e.Config.CheckoutDir(pack),
		CheckoutPresent: isDir(e.Config.CheckoutDir(pack)),
		CacheDir:        e.Cache.Path(),
	}

	res.Tag, res.HasTag, res.TagErr = e.Store.CurrentTag()

	rev, ok, err := e.MapPackRevision()
	if err != nil {
		e.Logger.Warn("map pack index unreadable", "err", err)
	}
	res.MapRevision, res.HasMapPack = rev, ok

	folders, err := e.Store.Folders()
	if err != nil {
		return res, err
	}
	res.Folders = folders

	size, err := e.Cache.Size()
	if err != nil {
		return res, err
	}
	res.CacheSize = size
	return res, nil
}
