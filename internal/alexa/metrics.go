package alexa

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics counts API calls by method and status so batch runs can be
// pushed to a gateway afterwards.
type metrics struct {
	requests *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alexasweep_api_requests_total",
			Help: "Alexa API requests by method and status code",
		}, []string{"method", "status"}),
	}
}

func (m *metrics) observe(method string, status int) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Collectors exposes the client's metrics for registration.
func (c *Client) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.metrics.requests}
}
