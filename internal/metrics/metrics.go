package metrics

import (
	"errors"
	"time"

	"github.com/newthinker/pickboard/internal/core"
	"github.com/newthinker/pickboard/internal/dashboard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Board metrics
	fetchesTotal      *prometheus.CounterVec
	fetchDuration     prometheus.Histogram
	triggersTotal     *prometheus.CounterVec
	recommendations   prometheus.Gauge
	boardLoading      prometheus.Gauge
	lastSuccess       prometheus.Gauge
	streamSubscribers prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Board metrics
	r.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickboard_fetches_total",
			Help: "Total number of recommendation fetches",
		},
		[]string{"reason", "outcome"},
	)
	r.fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pickboard_fetch_duration_seconds",
			Help:    "Recommendation fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.triggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickboard_triggers_total",
			Help: "Total number of recalculation triggers",
		},
		[]string{"outcome"},
	)
	r.recommendations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickboard_recommendations",
			Help: "Number of recommendations currently displayed",
		},
	)
	r.boardLoading = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickboard_board_loading",
			Help: "1 while a board request is outstanding",
		},
	)
	r.lastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickboard_last_success_timestamp_seconds",
			Help: "Unix time of the last successful fetch",
		},
	)
	r.streamSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickboard_stream_subscribers",
			Help: "Number of connected live board streams",
		},
	)

	reg.MustRegister(r.fetchesTotal)
	reg.MustRegister(r.fetchDuration)
	reg.MustRegister(r.triggersTotal)
	reg.MustRegister(r.recommendations)
	reg.MustRegister(r.boardLoading)
	reg.MustRegister(r.lastSuccess)
	reg.MustRegister(r.streamSubscribers)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// ObserveFetch records a settled recommendation fetch.
func (r *Registry) ObserveFetch(reason string, err error, duration time.Duration) {
	r.fetchesTotal.WithLabelValues(reason, outcome(err)).Inc()
	r.fetchDuration.Observe(duration.Seconds())
	if err == nil {
		r.lastSuccess.SetToCurrentTime()
	}
}

// ObserveTrigger records a settled recalculation trigger.
func (r *Registry) ObserveTrigger(err error) {
	r.triggersTotal.WithLabelValues(outcome(err)).Inc()
}

// ObserveState records the displayed board state.
func (r *Registry) ObserveState(s dashboard.State) {
	r.recommendations.Set(float64(len(s.Stocks)))
	if s.Loading {
		r.boardLoading.Set(1)
	} else {
		r.boardLoading.Set(0)
	}
}

// StreamOpened counts a connected live stream.
func (r *Registry) StreamOpened() {
	r.streamSubscribers.Inc()
}

// StreamClosed counts a disconnected live stream.
func (r *Registry) StreamClosed() {
	r.streamSubscribers.Dec()
}

// outcome maps an error to a low-cardinality label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, core.ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, core.ErrParse):
		return "parse"
	default:
		return "network"
	}
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
