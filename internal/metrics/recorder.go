package metrics

import "time"

// OutcomeLabel is the final status of a run.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeStale   OutcomeLabel = "stale"
	OutcomeFailed  OutcomeLabel = "failed"
)

// PageResult is what a run did with one page.
type PageResult string

const (
	PageWritten   PageResult = "written"
	PageUnchanged PageResult = "unchanged"
	PageRemoved   PageResult = "removed"
	PageStale     PageResult = "stale"
)

// Recorder defines observability hooks for generator runs.
type Recorder interface {
	ObserveRunDuration(d time.Duration)
	ObserveStageDuration(stage string, d time.Duration)
	IncRunOutcome(outcome OutcomeLabel)
	IncPages(result PageResult, n int)
	SetTargets(n int)
	SetStubbedSections(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)                 {}
func (NoopRecorder) IncPages(PageResult, int)                   {}
func (NoopRecorder) SetTargets(int)                             {}
func (NoopRecorder) SetStubbedSections(int)                     {}
