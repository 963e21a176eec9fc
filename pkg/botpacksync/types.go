package botpacksync

import (
	"github.com/bianoble/botpack-sync/internal/config"
	"github.com/bianoble/botpack-sync/internal/engine"
	"github.com/bianoble/botpack-sync/internal/outcome"
	"github.com/bianoble/botpack-sync/internal/progress"
	"github.com/bianoble/botpack-sync/internal/revision"
)

// Type aliases re-export internal types as the public API.
// Users import "github.com/bianoble/botpack-sync/pkg/botpacksync" and use
// botpacksync.Outcome, botpacksync.CheckResult, etc.

type Config = config.Config
type Pack = config.Pack
type Tuning = config.Tuning

type Outcome = outcome.Outcome
type OutcomeKind = outcome.Kind

const (
	RequiresFullDownload = outcome.RequiresFullDownload
	Skipped              = outcome.Skipped
	Success              = outcome.Success
)

type Tag = revision.Tag

// ProgressSink receives (percent, status) events during long operations.
type ProgressSink = progress.Sink

// ProgressFunc adapts a function to a ProgressSink.
type ProgressFunc = progress.SinkFunc

type UpdateResult = engine.UpdateResult
type CheckResult = engine.CheckResult
type MapPackResult = engine.MapPackResult
type StatusResult = engine.StatusResult
type PruneResult = engine.PruneResult
