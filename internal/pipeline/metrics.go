package pipeline

import (
	"context"
	"errors"

	"github.com/bimmerbailey/recase/internal/dispatch"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for recase_transform_runs_total.
const (
	outcomeOK        = "ok"
	outcomeUnknown   = "unknown_key"
	outcomeEncoding  = "encoding"
	outcomeTooLarge  = "too_large"
	outcomeFailed    = "failed"
	outcomeCancelled = "cancelled"
)

// Metrics holds the Prometheus collectors updated by Run. A nil *Metrics
// records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	spans    *prometheus.CounterVec
	missing  prometheus.Counter
}

// NewMetrics creates the pipeline collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recase",
			Name:      "transform_runs_total",
			Help:      "Transformation runs by key and outcome.",
		}, []string{"key", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recase",
			Name:      "transform_duration_seconds",
			Help:      "Wall time of a pipeline run by size tier.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"tier"}),
		spans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recase",
			Name:      "preserved_spans_total",
			Help:      "Substrings protected from transformation by category.",
		}, []string{"category"}),
		missing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recase",
			Name:      "missing_placeholders_total",
			Help:      "Placeholders that a transformation removed.",
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.duration, m.spans, m.missing} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(key string, res *Result, err error) {
	if m == nil {
		return
	}

	outcome := outcomeFor(err)
	if outcome == outcomeUnknown {
		// Unknown keys are caller input; keep label cardinality bounded.
		key = "unknown"
	}
	m.runs.WithLabelValues(key, outcome).Inc()
	m.duration.WithLabelValues(string(res.Tier)).Observe(res.Duration.Seconds())

	if err != nil {
		return
	}
	for _, s := range res.Spans {
		m.spans.WithLabelValues(string(s.Category)).Inc()
	}
	m.missing.Add(float64(len(res.Warnings)))
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, dispatch.ErrUnknownTransform):
		return outcomeUnknown
	case errors.Is(err, ErrEncoding):
		return outcomeEncoding
	case errors.Is(err, ErrInputTooLarge):
		return outcomeTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCancelled
	default:
		return outcomeFailed
	}
}
