// Package metrics exports engine step summaries as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/sophon/internal/engine"
)

const namespace = "sophon"

// Application outcomes used as the "outcome" label.
const (
	OutcomeOK               = "ok"
	OutcomeInvariantsFailed = "invariants_failed"
	OutcomeApplyFailed      = "apply_failed"
)

// Recorder holds the engine metrics on its own registry.
// Implements engine.Observer.
type Recorder struct {
	registry *prometheus.Registry

	steps         prometheus.Counter
	applications  *prometheus.CounterVec
	candidates    prometheus.Histogram
	reward        prometheus.Histogram
	fallbacks     prometheus.Counter
	explorations  prometheus.Counter
	releases      prometheus.Counter
	precondErrors prometheus.Counter
	energy        prometheus.Gauge
	mass          prometheus.Gauge
	seenApps      prometheus.Gauge
	seenProps     prometheus.Gauge
}

// NewRecorder creates a recorder with every metric registered on a fresh
// registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,

		// steps counts completed steps. Steps without candidates are not counted.
		steps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "steps_total",
			Help:      "Total completed engine steps",
		}),

		// applications counts attempted applications.
		// Labels: op (op name), outcome (ok, invariants_failed, apply_failed)
		applications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "applications_total",
			Help:      "Total op applications by op and outcome",
		}, []string{"op", "outcome"}),

		candidates: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "candidates",
			Help:      "Candidates enumerated per step",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),

		// reward observes each application's shaped reward.
		reward: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "reward",
			Help:      "Distribution of per-application rewards",
			Buckets:   []float64{0, 0.1, 0.25, 0.5, 0.75, 1, 1.5, 2, 3},
		}),

		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "fallbacks_total",
			Help:      "Steps where the greedy fallback forced a selection",
		}),

		explorations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "explorations_total",
			Help:      "Steps where the exploration pass picked a candidate",
		}),

		releases: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "releases_total",
			Help:      "Steps where mass was released back to energy",
		}),

		precondErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "precond_errors_total",
			Help:      "Total isolated precondition failures",
		}),

		energy: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "energy",
			Help:      "Energy E after the latest step",
		}),

		mass: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "mass",
			Help:      "Mass m after the latest step",
		}),

		seenApps: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "seen_applications",
			Help:      "Distinct (op, inputs) pairs applied so far",
		}),

		seenProps: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "seen_propositions",
			Help:      "Distinct proposition nodes seen so far",
		}),
	}
}

// OnStep implements engine.Observer.
func (r *Recorder) OnStep(_ context.Context, s *engine.Summary) error {
	r.steps.Inc()
	r.candidates.Observe(float64(s.Candidates))
	if s.FallbackUsed {
		r.fallbacks.Inc()
	}
	if s.Explored {
		r.explorations.Inc()
	}
	if s.Released {
		r.releases.Inc()
	}
	r.precondErrors.Add(float64(len(s.PrecondErrors)))

	for _, a := range s.Attempts {
		r.applications.WithLabelValues(a.Op, outcome(a)).Inc()
		if !a.Failed() {
			r.reward.Observe(a.Reward)
		}
	}

	r.energy.Set(s.Energy)
	r.mass.Set(s.Mass)
	r.seenApps.Set(float64(s.SeenApplications))
	r.seenProps.Set(float64(s.SeenPropositions))
	return nil
}

func outcome(a engine.Attempt) string {
	switch {
	case a.Failed():
		return OutcomeApplyFailed
	case !a.InvariantsOK:
		return OutcomeInvariantsFailed
	default:
		return OutcomeOK
	}
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the recorder's metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
