// Package metrics records behavior-check telemetry with Prometheus
// collectors on a private registry.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "specobj"

// Recorder holds the check collectors.
type Recorder struct {
	registry  *prometheus.Registry
	checks    *prometheus.CounterVec
	duration  prometheus.Histogram
	logLength prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Behavior checks by method and verdict.",
		}, []string{"method", "verdict"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Time spent evaluating one behavior check.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		logLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_length",
			Help:      "Number of calls recorded by the most recent monitor.",
		}),
	}
	r.registry.MustRegister(r.checks, r.duration, r.logLength)
	return r
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveCheck counts one check of method with the given verdict.
func (r *Recorder) ObserveCheck(method, verdict string, elapsed time.Duration) {
	r.checks.WithLabelValues(method, verdict).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// SetLogLength records the current length of the call log.
func (r *Recorder) SetLogLength(n int) {
	r.logLength.Set(float64(n))
}

// Count is the number of checks of Method that ended with Verdict.
type Count struct {
	Method  string
	Verdict string
	Value   float64
}

// Summary gathers the check counters, sorted by method then verdict.
func (r *Recorder) Summary() ([]Count, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Count
	for _, mf := range families {
		if mf.GetName() != namespace+"_checks_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			c := Count{Value: m.GetCounter().GetValue()}
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "method":
					c.Method = lp.GetValue()
				case "verdict":
					c.Verdict = lp.GetValue()
				}
			}
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Method != out[j].Method {
			return out[i].Method < out[j].Method
		}
		return out[i].Verdict < out[j].Verdict
	})
	return out, nil
}
