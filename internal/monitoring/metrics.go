// Package monitoring exposes ingestion and HTTP metrics in Prometheus format
// and evaluates the health of the last ingestion run.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/producer-intervals/internal/model"
)

const namespace = "intervals"

// Metrics owns a private Prometheus registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ingestLines     *prometheus.CounterVec
	diagnostics     *prometheus.CounterVec
	records         prometheus.Gauge
	resultIntervals *prometheus.GaugeVec
	ingestDuration  prometheus.Gauge
	sourceUp        prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ingestLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_lines_total",
			Help:      "Source data lines processed, by outcome.",
		}, []string{"outcome"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_diagnostics_total",
			Help:      "Parser diagnostics, by reason.",
		}, []string{"reason"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_records",
			Help:      "Records held by the repository after the last ingestion.",
		}),
		resultIntervals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "result_intervals",
			Help:      "Intervals computed and selected, by set.",
		}, []string{"set"}),
		ingestDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Wall time of the last ingestion.",
		}),
		sourceUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_up",
			Help:      "1 if the source was read successfully, 0 otherwise.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ingestLines, m.diagnostics, m.records, m.resultIntervals,
		m.ingestDuration, m.sourceUp, m.httpRequests, m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveIngest records the outcome of an ingestion run.
func (m *Metrics) ObserveIngest(report model.IngestReport, result model.ResultSet) {
	if m == nil {
		return
	}
	m.ingestLines.WithLabelValues("accepted").Add(float64(report.Lines - report.Skipped))
	m.ingestLines.WithLabelValues("skipped").Add(float64(report.Skipped))
	for reason, n := range report.DiagnosticCounts() {
		m.diagnostics.WithLabelValues(string(reason)).Add(float64(n))
	}
	m.records.Set(float64(report.Records))
	m.resultIntervals.WithLabelValues("all").Set(float64(report.Intervals))
	m.resultIntervals.WithLabelValues("min").Set(float64(len(result.Min)))
	m.resultIntervals.WithLabelValues("max").Set(float64(len(result.Max)))
	m.ingestDuration.Set(report.Duration.Seconds())
	if report.SourceOK {
		m.sourceUp.Set(1)
	} else {
		m.sourceUp.Set(0)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests and observes latency per chi route pattern.
// Unmatched paths are grouped under "unmatched" to bound label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
