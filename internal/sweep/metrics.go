package sweep

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/joshp123/alexasweep/internal/alexa"
)

// Metrics tracks sweep outcomes. The process is a batch job, so the
// values are meant for a push gateway rather than a scrape endpoint.
type Metrics struct {
	enumerated prometheus.Gauge
	matched    prometheus.Gauge
	attempted  prometheus.Gauge
	accepted   prometheus.Gauge
	rejected   prometheus.Gauge
	duration   prometheus.Gauge
	lastRun    prometheus.Gauge
	deletions  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		enumerated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alexasweep_run_enumerated_devices",
			Help: "Devices returned by enumeration in the last run",
		}),
		matched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alexasweep_run_matched_devices",
			Help: "Devices matching the filter in the last run",
		}),
		attempted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alexasweep_run_deletes_attempted",
			Help: "Delete calls issued in the last run",
		}),
		accepted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alexasweep_run_deletes_accepted",
			Help: "Delete calls the API accepted in the last run (2xx, not proof of removal)",
		}),
		rejected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alexasweep_run_deletes_rejected",
			Help: "Delete calls rejected or failed in the last run",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alexasweep_run_duration_seconds",
			Help: "Duration of the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alexasweep_last_run_timestamp_seconds",
			Help: "Completion timestamp of the last run (epoch seconds)",
		}),
		deletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alexasweep_deletions_total",
			Help: "Delete calls by outcome and source",
		}, []string{"outcome", "source"}),
	}
}

func (m *Metrics) observeDeletion(d Deletion) {
	outcome := "rejected"
	switch {
	case d.DryRun:
		outcome = "planned"
	case d.Accepted:
		outcome = "accepted"
	}
	m.deletions.WithLabelValues(outcome, string(d.Device.Source)).Inc()
}

func (m *Metrics) observeRun(r *Report) {
	m.enumerated.Set(float64(r.Enumerated))
	m.matched.Set(float64(r.Matched))
	m.attempted.Set(float64(r.Attempted))
	m.accepted.Set(float64(r.Accepted))
	m.rejected.Set(float64(r.Rejected))
	m.duration.Set(r.Duration().Seconds())
	m.lastRun.Set(float64(r.FinishedAt.Unix()))
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.enumerated.Describe(ch)
	m.matched.Describe(ch)
	m.attempted.Describe(ch)
	m.accepted.Describe(ch)
	m.rejected.Describe(ch)
	m.duration.Describe(ch)
	m.lastRun.Describe(ch)
	m.deletions.Describe(ch)
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.enumerated.Collect(ch)
	m.matched.Collect(ch)
	m.attempted.Collect(ch)
	m.accepted.Collect(ch)
	m.rejected.Collect(ch)
	m.duration.Collect(ch)
	m.lastRun.Collect(ch)
	m.deletions.Collect(ch)
}

// PushMetrics publishes the run and API-client metrics to a Prometheus
// push gateway under one job name.
func PushMetrics(gateway, job string, client *alexa.Client, m *Metrics) error {
	pusher := push.New(gateway, job).Collector(m)
	for _, collector := range client.Collectors() {
		pusher = pusher.Collector(collector)
	}
	return pusher.Push()
}
