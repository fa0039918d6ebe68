// Package notify publishes run summaries to interested listeners.
package notify

import (
	"context"
	"time"
)

// RunEvent summarizes one generator run.
type RunEvent struct {
	RunID      string    `json:"run_id"`
	Revision   string    `json:"revision,omitempty"`
	Status     string    `json:"status"`
	Check      bool      `json:"check"`
	Targets    int       `json:"targets"`
	Written    []string  `json:"written,omitempty"`
	Removed    []string  `json:"removed,omitempty"`
	Stale      []string  `json:"stale,omitempty"`
	Warnings   int       `json:"warnings"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier receives a RunEvent at the end of every run.
type Notifier interface {
	Notify(ctx context.Context, event RunEvent) error
	Close() error
}

// NoopNotifier drops every event.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, RunEvent) error { return nil }
func (NoopNotifier) Close() error                           { return nil }
