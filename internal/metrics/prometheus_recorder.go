package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "targetdocs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	runDuration   prom.Histogram
	stageDuration *prom.HistogramVec
	runOutcomes   *prom.CounterVec
	pages         *prom.CounterVec
	targets       prom.Gauge
	stubbed       prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total generator run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual run stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.runOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Runs by final status",
		}, []string{"outcome"})
		pr.pages = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages handled by result",
		}, []string{"result"})
		pr.targets = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "targets",
			Help:      "Targets documented by the last run",
		})
		pr.stubbed = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stubbed_sections",
			Help:      "Sections filled with the stub text in the last run",
		})
		reg.MustRegister(pr.runDuration, pr.stageDuration, pr.runOutcomes, pr.pages, pr.targets, pr.stubbed)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil || p.runOutcomes == nil {
		return
	}
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncPages(result PageResult, n int) {
	if p == nil || p.pages == nil || n <= 0 {
		return
	}
	p.pages.WithLabelValues(string(result)).Add(float64(n))
}

func (p *PrometheusRecorder) SetTargets(n int) {
	if p == nil || p.targets == nil {
		return
	}
	p.targets.Set(float64(n))
}

func (p *PrometheusRecorder) SetStubbedSections(n int) {
	if p == nil || p.stubbed == nil {
		return
	}
	p.stubbed.Set(float64(n))
}
