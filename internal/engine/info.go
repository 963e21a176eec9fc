package engine

// CacheSize returns the bytes held by the patch archive cache.
func (e *Engine) CacheSize() (int64, error) {
	return e.Cache.Size()
}

// CacheClean removes every cached patch archive.
func (e *Engine) CacheClean() error {
	e.run("cache").Info("clearing patch cache", "path", e.Cache.Path())
	return e.Cache.Clear()
}
