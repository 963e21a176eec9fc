package engine

import (
	"github.com/bianoble/botpack-sync/internal/mappack"
	"github.com/bianoble/botpack-sync/internal/outcome"
	"github.com/bianoble/botpack-sync/internal/patch"
	"github.com/bianoble/botpack-sync/internal/revision"
)

// UpdateResult holds the outcome of an EnsureBotpack run.
type UpdateResult struct {
	Outcome outcome.Outcome
	// Patch describes the incremental attempt.
	Patch patch.Report
	// FullDownload is set when a full snapshot download was performed.
	FullDownload bool
}

// CheckResult compares the installed bot pack with the latest release.
type CheckResult struct {
	Local           revision.Tag
	HasLocal        bool
	Remote          revision.Tag
	RemoteErr       error
	CheckoutPresent bool
	// UpToDate follows the lenient rule of IsBotpackUpToDate.
	UpToDate bool
}

// MapPackResult holds the outcome of a map pack update.
type MapPackResult struct {
	Outcome outcome.Outcome
	Hydrate mappack.HydrateResult
}

// StatusResult describes local state without touching the network.
type StatusResult struct {
	Tag             revision.Tag
	HasTag          bool
	TagErr          error
	BotpackDir      string
	CheckoutPresent bool
	MapRevision     uint64
	HasMapPack      bool
	Folders         []string
	CacheDir        string
	CacheSize       int64
}

// PruneResult lists the empty directories removed from the checkout.
type PruneResult struct {
	Removed []string
}
