package engine

import (
	"fmt"

	"github.com/bianoble/botpack-sync/internal/sandbox"
)

// Prune removes empty directories from the bot pack checkout.
func (e *Engine) Prune() (PruneResult, error) {
	logger := e.run("prune")
	dir := e.Config.CheckoutDir(e.Config.Botpack)
	if !isDir(dir) {
		return PruneResult{}, fmt.Errorf("bot pack checkout not found at %s", dir)
	}
	removed, err := sandbox.PruneEmptyDirs(dir)
	logger.Info("pruned checkout", "path", dir, "removed", len(removed))
	return PruneResult{Removed: removed}, err
}
