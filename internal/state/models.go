package state

import "time"

// RunStatus is the outcome of a generator run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	// RunStatusStale is a check run that found pages out of date.
	RunStatusStale RunStatus = "stale"
)

// RunSummary is one row of run history.
type RunSummary struct {
	ID        string
	Revision  string
	Status    RunStatus
	StartedAt time.Time
	EndedAt   time.Time
	Targets   int
	Written   int
	Unchanged int
	Removed   int
	Warnings  int
	Error     string
}

// Duration is the wall time of a finished run, zero while running.
func (r RunSummary) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
