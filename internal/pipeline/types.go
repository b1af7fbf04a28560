// Package pipeline defines progress events shared by the download, extract,
// and shell runners and the sinks that render them.
package pipeline

import "time"

// Stage describes a high-level job phase.
type Stage string

const (
	// StageFetch is the download stage.
	StageFetch Stage = "fetch"
	// StageExtract is the archive extraction stage.
	StageExtract Stage = "extract"
	// StageRun is the subprocess stage.
	StageRun Stage = "run"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the item is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the item is currently being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the item finished successfully.
	StatusDone Status = "done"
	// StatusError indicates the item failed.
	StatusError Status = "error"
)

// Event reports progress for one item (or for the overall run when Item is
// empty). Done/Total carry byte counts for stages that know them; Total is
// zero when the size is unknown.
type Event struct {
	Item    string
	Stage   Stage
	Status  Status
	Done    int64
	Total   int64
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}
