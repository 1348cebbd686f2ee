package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultResolved   = "resolved"
	ResultUnresolved = "unresolved"
)

type Metrics struct {
	Namespace string
	Labels    map[string]string

	registry *prometheus.Registry
	handler  http.Handler

	// resolution
	resolutions *prometheus.CounterVec

	// http
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func (m *Metrics) Init() {
	m.registry = prometheus.NewRegistry()
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	m.resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.Namespace,
		Subsystem:   "identity",
		Name:        "resolutions_total",
		Help:        `Total number of identity resolutions by operation and result. The result is "unresolved" when the uid, gid or SID could not be determined.`,
		ConstLabels: prometheus.Labels(m.Labels),
	}, []string{"op", "result"})
	m.registry.MustRegister(m.resolutions)
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.Namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        `Total number of HTTP requests by handler and status code.`,
		ConstLabels: prometheus.Labels(m.Labels),
	}, []string{"handler", "code"})
	m.registry.MustRegister(m.httpRequests)
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.Namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        `The time spent serving HTTP requests, in seconds`,
		ConstLabels: prometheus.Labels(m.Labels),
		Buckets:     prometheus.DefBuckets,
	}, []string{"handler"})
	m.registry.MustRegister(m.httpDuration)
}

// Observe counts the outcome of one identity resolution
func (m *Metrics) Observe(op string, resolved bool) {
	result := ResultUnresolved
	if resolved {
		result = ResultResolved
	}
	m.resolutions.WithLabelValues(op, result).Inc()
}

// OnRequest records a served HTTP request
func (m *Metrics) OnRequest(handler string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(handler, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(handler).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return m.handler
}
