package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	exchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mctp",
			Subsystem: "exchange",
			Name:      "total",
			Help:      "Total MCTP request/response exchanges by response status.",
		},
		[]string{"node", "status"},
	)
	exchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mctp",
			Subsystem: "exchange",
			Name:      "duration_seconds",
			Help:      "MCTP exchange duration from accept to close.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "status"},
	)
	bodyBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mctp",
			Subsystem: "exchange",
			Name:      "body_bytes_total",
			Help:      "Response body bytes written.",
		},
		[]string{"node"},
	)
	connErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mctp",
			Subsystem: "conn",
			Name:      "errors_total",
			Help:      "Connections aborted by transport errors.",
		},
		[]string{"node", "stage"},
	)
	activeConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mctp",
			Subsystem: "conn",
			Name:      "active",
			Help:      "Connections currently being served.",
		},
		[]string{"node"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mctp",
			Subsystem: "admin_http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mctp",
			Subsystem: "admin_http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			exchanges,
			exchangeDuration,
			bodyBytes,
			connErrors,
			activeConns,
			httpRequests,
			httpDuration,
		)
	})
}

// RecordExchange counts one completed exchange. status is the MCTP status
// line, e.g. "200 OK".
func RecordExchange(node, status string, bytes int, duration time.Duration) {
	RegisterMetrics()
	exchanges.WithLabelValues(node, status).Inc()
	exchangeDuration.WithLabelValues(node, status).Observe(duration.Seconds())
	bodyBytes.WithLabelValues(node).Add(float64(bytes))
}

// RecordConnError counts a connection aborted at stage (read, write).
func RecordConnError(node, stage string) {
	RegisterMetrics()
	connErrors.WithLabelValues(node, stage).Inc()
}

// ConnOpened bumps the active connection gauge and returns its release.
func ConnOpened(node string) func() {
	RegisterMetrics()
	g := activeConns.WithLabelValues(node)
	g.Inc()
	return g.Dec
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
