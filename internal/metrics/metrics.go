// Package metrics exposes colony run counters to Prometheus.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwbudde/beecolony/pkg/abc"
)

// Collector turns cumulative abc.Status snapshots into Prometheus series
// labelled by job and problem.
type Collector struct {
	iterations *prometheus.CounterVec
	scouts     *prometheus.CounterVec
	nans       *prometheus.CounterVec
	bestCost   *prometheus.GaugeVec
	roundTime  *prometheus.HistogramVec

	gatherer prometheus.Gatherer

	mu   sync.Mutex
	last map[string]abc.Status
}

// NewCollector registers the colony series on reg. A nil reg uses a fresh
// private registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	labels := []string{"job", "problem"}

	return &Collector{
		iterations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beecol",
			Name:      "iterations_total",
			Help:      "Completed colony iterations.",
		}, labels),
		scouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beecol",
			Name:      "scout_events_total",
			Help:      "Food sources abandoned and redrawn.",
		}, labels),
		nans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beecol",
			Name:      "nan_events_total",
			Help:      "NaN cost evaluations that were redrawn or re-sampled.",
		}, labels),
		bestCost: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "beecol",
			Name:      "best_cost",
			Help:      "Cost of the best food source found so far.",
		}, labels),
		roundTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "beecol",
			Name:      "round_duration_seconds",
			Help:      "Wall time of one Fit call.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, labels),
		gatherer: reg,
		last:     make(map[string]abc.Status),
	}
}

// Observe records the state after a round. Status is cumulative, so only
// the growth since the previous observation of the job is added. A resumed
// job starts from its checkpointed status.
func (c *Collector) Observe(job, problem string, st abc.Status, best float64, seconds float64) {
	c.mu.Lock()
	prev, seen := c.last[job]
	c.last[job] = st
	c.mu.Unlock()

	if !seen {
		prev = abc.Status{}
	}
	c.iterations.WithLabelValues(job, problem).Add(float64(max(st.Iterations-prev.Iterations, 0)))
	c.scouts.WithLabelValues(job, problem).Add(float64(max(st.ScoutEvents-prev.ScoutEvents, 0)))
	c.nans.WithLabelValues(job, problem).Add(float64(max(st.NaNEvents-prev.NaNEvents, 0)))
	c.bestCost.WithLabelValues(job, problem).Set(best)
	if seconds >= 0 {
		c.roundTime.WithLabelValues(job, problem).Observe(seconds)
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
