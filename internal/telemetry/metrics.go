// internal/telemetry/metrics.go
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the process-level Prometheus collectors.
type Metrics struct {
	// RequestDuration is labelled by method, route pattern and status code.
	RequestDuration *prometheus.HistogramVec
	// DbQueryDuration is labelled by query name and status.
	DbQueryDuration *prometheus.HistogramVec
	TotalErrors     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
			[]string{"method", "route", "status"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
			[]string{"query", "status"},
		),
		TotalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Number of failed HTTP requests and database queries.",
		},
			[]string{"source"},
		),
	}
	reg.MustRegister(m.RequestDuration, m.DbQueryDuration, m.TotalErrors)
	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	if route == "" {
		route = "unmatched"
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	if status >= 500 {
		m.TotalErrors.WithLabelValues("http").Inc()
	}
}

// ObserveDB records the duration and status of one database statement.
func (m *Metrics) ObserveDB(query string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		m.TotalErrors.WithLabelValues("db").Inc()
	}
	m.DbQueryDuration.WithLabelValues(query, status).Observe(time.Since(start).Seconds())
}
