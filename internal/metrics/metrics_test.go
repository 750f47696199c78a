package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.WeighIn()
	m.WeighIn()
	m.StockRejected()
	m.Sale(1500)
	m.FeedUsed("kg", 12.5)
	m.FeedUsed("kg", 0)
	m.JobRun("daily_snapshot", time.Second, nil)
	m.JobRun("daily_snapshot", time.Second, errors.New("boom"))
	m.ObserveRequest(http.MethodGet, "/api/cattle", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.weighIns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockRejections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sales))
	assert.Equal(t, 1500.0, testutil.ToFloat64(m.saleRevenue))
	assert.Equal(t, 12.5, testutil.ToFloat64(m.feedUsage.WithLabelValues("kg")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("daily_snapshot", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("daily_snapshot", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/cattle", "200")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.WeighIn()
		m.Sale(10)
		m.StockRejected()
		m.FeedUsed("kg", 1)
		m.JobRun("x", time.Second, nil)
		m.ReportGenerated("cattle", "csv")
		m.ObserveRequest("GET", "", 200, time.Millisecond)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ReportGenerated("cattle", "csv")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `feedlot_reports_generated_total{format="csv",type="cattle"} 1`)
}
