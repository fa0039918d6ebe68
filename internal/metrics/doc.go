// Package metrics records generator run and page metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never check for nil. The watch command swaps in a
// PrometheusRecorder and serves it with HTTPHandler.
package metrics
