package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	jobLaunches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metagen",
			Subsystem: "job",
			Name:      "launches_total",
			Help:      "Number of successful generator launches.",
		}, []string{"name"},
	)
	jobLaunchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metagen",
			Subsystem: "job",
			Name:      "launch_failures_total",
			Help:      "Number of launches that failed before the generator was spawned.",
		}, []string{"name"},
	)
	jobStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metagen",
			Subsystem: "job",
			Name:      "stops_total",
			Help:      "Number of operator-initiated stops.",
		}, []string{"name"},
	)
	jobRunning = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "metagen",
			Subsystem: "job",
			Name:      "running",
			Help:      "Whether the most recently launched job was alive at last probe (1/0).",
		}, []string{"name"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	for _, c := range []prometheus.Collector{jobLaunches, jobLaunchFailures, jobStops, jobRunning} {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// RegisterDefault registers with the default registry.
func RegisterDefault() error { return Register(prometheus.DefaultRegisterer) }

// Handler returns the /metrics handler for the default registry.
func Handler() http.Handler { return promhttp.Handler() }

func IncLaunch(name string)        { jobLaunches.WithLabelValues(name).Inc() }
func IncLaunchFailure(name string) { jobLaunchFailures.WithLabelValues(name).Inc() }
func IncStop(name string)          { jobStops.WithLabelValues(name).Inc() }

// SetRunning records the last observed liveness of a job.
func SetRunning(name string, running bool) {
	v := 0.0
	if running {
		v = 1.0
	}
	jobRunning.WithLabelValues(name).Set(v)
}
