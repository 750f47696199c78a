package scheduler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/metrics"
	"github.com/mamadbah2/feedlot/internal/service/analytics"
)

var testDashboard = models.Dashboard{
	GeneratedAt: time.Date(2024, 5, 2, 20, 0, 0, 0, time.UTC),
	Population:  models.PopulationSummary{Total: 3, Active: 3},
}

type fakeDashboard struct {
	archiveErr error
	archived   int
	computed   int
	callers    []models.Caller
}

func (f *fakeDashboard) ArchiveSnapshot(_ context.Context, caller models.Caller) (models.Dashboard, error) {
	f.callers = append(f.callers, caller)
	if f.archiveErr != nil {
		return models.Dashboard{}, f.archiveErr
	}
	f.archived++
	return testDashboard, nil
}

func (f *fakeDashboard) Dashboard(_ context.Context, caller models.Caller) (models.Dashboard, error) {
	f.callers = append(f.callers, caller)
	f.computed++
	return testDashboard, nil
}

type fakeStock struct {
	materials []models.RawMaterial
	err       error
}

func (f fakeStock) LowStock(context.Context, models.Caller) ([]models.RawMaterial, error) {
	return f.materials, f.err
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) NotifyManager(_ context.Context, message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

func testConfig() config.ReportingConfig {
	return config.ReportingConfig{CronSchedule: "0 20 * * *", LowStockSchedule: "0 7 * * *", Timezone: "UTC"}
}

func TestDailySnapshotArchivesAndNotifies(t *testing.T) {
	dashboard := &fakeDashboard{}
	notifier := &fakeNotifier{}
	s, err := NewScheduler(testConfig(), dashboard, fakeStock{}, notifier, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.DailySnapshot(context.Background()))
	assert.Equal(t, 1, dashboard.archived)
	assert.Equal(t, []models.Caller{models.SystemCaller}, dashboard.callers)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "Feedlot summary 2024-05-02")
}

func TestDailySnapshotWithoutArchive(t *testing.T) {
	dashboard := &fakeDashboard{archiveErr: analytics.ErrSnapshotsDisabled}
	notifier := &fakeNotifier{}
	s, err := NewScheduler(testConfig(), dashboard, fakeStock{}, notifier, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.DailySnapshot(context.Background()))
	assert.Equal(t, 1, dashboard.computed)
	assert.Len(t, notifier.messages, 1)
}

func TestLowStockAlert(t *testing.T) {
	notifier := &fakeNotifier{}
	s, err := NewScheduler(testConfig(), &fakeDashboard{}, fakeStock{}, notifier, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.LowStockAlert(context.Background()))
	assert.Empty(t, notifier.messages)

	s.stock = fakeStock{materials: []models.RawMaterial{{
		Name: "Maize", Unit: "kg", CurrentStock: decimal.NewFromInt(100), MinStock: decimal.NewFromInt(150),
	}}}
	require.NoError(t, s.LowStockAlert(context.Background()))
	assert.Equal(t, []string{"Low stock alert:\n- Maize: 100 kg (min 150)"}, notifier.messages)
}

func TestRunRecordsJobOutcome(t *testing.T) {
	m := metrics.New()
	s, err := NewScheduler(testConfig(), &fakeDashboard{}, fakeStock{err: errors.New("db down")}, nil, m, nil)
	require.NoError(t, err)

	s.run(jobLowStockAlert, s.LowStockAlert)
	s.run(jobDailySnapshot, s.DailySnapshot)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `feedlot_scheduler_job_runs_total{job="low_stock_alert",outcome="error"} 1`)
	assert.Contains(t, body, `feedlot_scheduler_job_runs_total{job="daily_snapshot",outcome="success"} 1`)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.LowStockSchedule = "every morning"
	s, err := NewScheduler(cfg, &fakeDashboard{}, fakeStock{}, nil, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())

	cfg.Timezone = "Mars/Olympus"
	_, err = NewScheduler(cfg, &fakeDashboard{}, fakeStock{}, nil, nil, nil)
	assert.Error(t, err)
}
