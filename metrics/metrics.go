// Package metrics counts and times engine operations with a private
// Prometheus registry.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Recorder holds the operation metrics of one engine.
type Recorder struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a Recorder with its own registry, so several engines in one
// process do not collide.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prologot_operations_total",
				Help: "Engine operations by name and outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prologot_operation_duration_seconds",
				Help:    "Duration of engine operations",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"op"},
		),
	}
	r.registry.MustRegister(r.calls, r.duration)
	return r
}

// Registry exposes the registry for an external exporter.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records one operation.
func (r *Recorder) Observe(op, outcome string, d time.Duration) {
	r.calls.WithLabelValues(op, outcome).Inc()
	r.duration.WithLabelValues(op).Observe(d.Seconds())
}

// Sample is one operation counter.
type Sample struct {
	Op      string
	Outcome string
	Count   uint64
}

// Samples returns the operation counters sorted by op and outcome.
func (r *Recorder) Samples() []Sample {
	families, err := r.registry.Gather()
	if err != nil {
		return nil
	}
	var out []Sample
	for _, fam := range families {
		if fam.GetName() != "prologot_operations_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			s := Sample{Count: uint64(m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				assignLabel(&s, lp)
			}
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Op != out[j].Op {
			return out[i].Op < out[j].Op
		}
		return out[i].Outcome < out[j].Outcome
	})
	return out
}

func assignLabel(s *Sample, lp *dto.LabelPair) {
	switch lp.GetName() {
	case "op":
		s.Op = lp.GetValue()
	case "outcome":
		s.Outcome = lp.GetValue()
	}
}
