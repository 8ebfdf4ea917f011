// README: Prometheus collectors for route generation, HTTP traffic and the DB pool.
package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"routeroll/internal/modules/route"
)

const namespace = "routeroll"

// RouteMetrics implements route.Metrics.
type RouteMetrics struct {
	attempts    *prometheus.CounterVec
	runs        *prometheus.CounterVec
	runAttempts prometheus.Histogram
	runDuration *prometheus.HistogramVec
}

var _ route.Metrics = (*RouteMetrics)(nil)

func NewRouteMetrics(reg prometheus.Registerer) *RouteMetrics {
	f := promauto.With(reg)
	return &RouteMetrics{
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "attempts_total",
			Help:      "Candidate attempts by outcome",
		}, []string{"outcome"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "runs_total",
			Help:      "Generation requests by final outcome",
		}, []string{"outcome"}),
		runAttempts: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "attempts_per_run",
			Help:      "Attempts consumed per generation request",
			Buckets:   []float64{1, 2, 3, 5, 8, 10, 15, 20},
		}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Wall time per generation request",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
	}
}

func (m *RouteMetrics) ObserveAttempt(outcome route.AttemptOutcome) {
	m.attempts.WithLabelValues(string(outcome)).Inc()
}

func (m *RouteMetrics) ObserveRun(outcome route.RunOutcome, attempts int, elapsed time.Duration) {
	m.runs.WithLabelValues(string(outcome)).Inc()
	m.runAttempts.Observe(float64(attempts))
	m.runDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// HTTPMetrics records request counts and latency per route pattern.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	f := promauto.With(reg)
	return &HTTPMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed",
		}, []string{"method", "path", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10, 30},
		}, []string{"method", "path"}),
	}
}

func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RegisterPoolStats exposes pgx pool gauges, read at scrape time.
func RegisterPoolStats(reg prometheus.Registerer, pool *pgxpool.Pool) {
	f := promauto.With(reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "db", Name: "pool_conns_open",
		Help: "Total connections open in the database pool",
	}, func() float64 { return float64(pool.Stat().TotalConns()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "db", Name: "pool_conns_acquired",
		Help: "Connections currently acquired from the database pool",
	}, func() float64 { return float64(pool.Stat().AcquiredConns()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "db", Name: "pool_conns_idle",
		Help: "Idle connections in the database pool",
	}, func() float64 { return float64(pool.Stat().IdleConns()) })
}
