// Package metrics exposes Prometheus metrics for HTTP traffic and the
// database bootstrap.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studybrief/brief/cmd/brief/internal/requestmeta"
)

const (
	namespace         = "brief"
	httpSubsystem     = "http"
	databaseSubsystem = "database"

	httpInFlightRequestsMetricName       = "in_flight_requests"
	httpRequestsTotalMetricName          = "requests_total"
	httpRequestDurationSecondsMetricName = "request_duration_seconds"

	databaseBootstrapTotalMetricName = "bootstrap_total"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: httpSubsystem,
			Name:      httpRequestsTotalMetricName,
			Help:      "A counter for http requests.",
		},
		[]string{"code", "method"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: httpSubsystem,
			Name:      httpRequestDurationSecondsMetricName,
			Help:      "A histogram of latencies for http requests, measured from the moment a correlation id was assigned.",
			Buckets: []float64{
				0.005, /* 5ms */
				0.025, /* 25ms */
				0.1,   /* 100ms */
				0.5,   /* 500ms */
				1.0,   /* 1s */
				10.0,  /* 10s */
				30.0,  /* 30s */
			},
		},
		[]string{"code", "method"},
	)

	httpInFlightRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: httpSubsystem,
			Name:      httpInFlightRequestsMetricName,
			Help:      "A gauge of requests currently being served.",
		},
	)

	databaseBootstrapTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: databaseSubsystem,
			Name:      databaseBootstrapTotalMetricName,
			Help:      "A counter for database bootstrap outcomes.",
		},
		[]string{"result"},
	)
)

// Middleware records request count, latency and in-flight requests.
// It must run inside requestmeta.Middleware for latency to include the
// time spent in outer middleware.
func Middleware(next http.Handler) http.Handler {
	counted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if rc, ok := requestmeta.FromContext(r.Context()); ok {
			start = rc.StartTime
		}

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		labels := prometheus.Labels{
			"code":   strconv.Itoa(status),
			"method": sanitizeMethod(r.Method),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDurationSeconds.With(labels).Observe(time.Since(start).Seconds())
	})

	return promhttp.InstrumentHandlerInFlight(httpInFlightRequests, counted)
}

// sanitizeMethod bounds the method label to the registered HTTP methods.
// Anything else is reported as "unknown".
func sanitizeMethod(m string) string {
	switch m {
	case http.MethodGet, "get":
		return "get"
	case http.MethodPut, "put":
		return "put"
	case http.MethodHead, "head":
		return "head"
	case http.MethodPost, "post":
		return "post"
	case http.MethodDelete, "delete":
		return "delete"
	case http.MethodConnect, "connect":
		return "connect"
	case http.MethodOptions, "options":
		return "options"
	case http.MethodPatch, "patch":
		return "patch"
	case http.MethodTrace, "trace":
		return "trace"
	default:
		return "unknown"
	}
}

// ObserveBootstrap counts one database bootstrap outcome.
func ObserveBootstrap(result string) {
	databaseBootstrapTotal.WithLabelValues(result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
