package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is valid and
// records nothing, so services can be built without it in tests.
type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	weighIns        prometheus.Counter
	feedUsage       *prometheus.CounterVec
	stockRejections prometheus.Counter
	sales           prometheus.Counter
	saleRevenue     prometheus.Counter
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	reports         *prometheus.CounterVec
}

// New registers the collectors on a fresh registry together with the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedlot_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedlot_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		weighIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedlot_weigh_ins_total",
			Help: "Weight records written.",
		}),
		feedUsage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedlot_feed_used_total",
			Help: "Feed quantity taken out of inventory, by unit.",
		}, []string{"unit"}),
		stockRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedlot_stock_rejections_total",
			Help: "Stock decrements refused for insufficient stock.",
		}),
		sales: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedlot_sales_total",
			Help: "Cattle sales recorded.",
		}),
		saleRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedlot_sale_revenue_total",
			Help: "Sum of recorded sale prices.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedlot_scheduler_job_runs_total",
			Help: "Scheduled job runs by name and outcome.",
		}, []string{"job", "outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedlot_scheduler_job_duration_seconds",
			Help:    "Scheduled job latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"job"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedlot_reports_generated_total",
			Help: "Reports generated by type and format.",
		}, []string{"type", "format"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.weighIns,
		m.feedUsage,
		m.stockRejections,
		m.sales,
		m.saleRevenue,
		m.jobRuns,
		m.jobDuration,
		m.reports,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) WeighIn() {
	if m == nil {
		return
	}
	m.weighIns.Inc()
}

func (m *Metrics) FeedUsed(unit string, qty float64) {
	if m == nil || qty <= 0 {
		return
	}
	m.feedUsage.WithLabelValues(unit).Add(qty)
}

func (m *Metrics) StockRejected() {
	if m == nil {
		return
	}
	m.stockRejections.Inc()
}

func (m *Metrics) Sale(price float64) {
	if m == nil {
		return
	}
	m.sales.Inc()
	if price > 0 {
		m.saleRevenue.Add(price)
	}
}

// JobRun records a scheduled job execution. err == nil counts as success.
func (m *Metrics) JobRun(job string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

func (m *Metrics) ReportGenerated(reportType, format string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(reportType, format).Inc()
}
