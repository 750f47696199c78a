package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/metrics"
	"github.com/mamadbah2/feedlot/internal/service/analytics"
	"github.com/mamadbah2/feedlot/internal/service/commands"
)

const (
	jobDailySnapshot = "daily_snapshot"
	jobLowStockAlert = "low_stock_alert"
	jobTimeout       = 2 * time.Minute
)

// DashboardArchiver computes and stores the daily dashboard snapshot.
type DashboardArchiver interface {
	ArchiveSnapshot(ctx context.Context, caller models.Caller) (models.Dashboard, error)
	Dashboard(ctx context.Context, caller models.Caller) (models.Dashboard, error)
}

// StockReader lists materials below their minimum stock.
type StockReader interface {
	LowStock(ctx context.Context, caller models.Caller) ([]models.RawMaterial, error)
}

// Notifier delivers a text message to the farm manager.
type Notifier interface {
	NotifyManager(ctx context.Context, message string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	cfg       config.ReportingConfig
	dashboard DashboardArchiver
	stock     StockReader
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
// notifier may be nil, in which case jobs only log their results.
func NewScheduler(cfg config.ReportingConfig, dashboard DashboardArchiver, stock StockReader, notifier Notifier, m *metrics.Metrics, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		cfg:       cfg,
		dashboard: dashboard,
		stock:     stock,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, func() { s.run(jobDailySnapshot, s.DailySnapshot) }); err != nil {
		return fmt.Errorf("schedule %s %q: %w", jobDailySnapshot, s.cfg.CronSchedule, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.LowStockSchedule, func() { s.run(jobLowStockAlert, s.LowStockAlert) }); err != nil {
		return fmt.Errorf("schedule %s %q: %w", jobLowStockAlert, s.cfg.LowStockSchedule, err)
	}

	s.logger.Info("starting scheduler",
		zap.String("snapshot_schedule", s.cfg.CronSchedule),
		zap.String("low_stock_schedule", s.cfg.LowStockSchedule),
		zap.String("timezone", s.cfg.Timezone))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run(job string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	s.metrics.JobRun(job, time.Since(start), err)
	if err != nil {
		s.logger.Error("scheduled job failed", zap.String("job", job), zap.Error(err))
		return
	}
	s.logger.Info("scheduled job completed", zap.String("job", job), zap.Duration("duration", time.Since(start)))
}

// DailySnapshot archives the dashboard and sends its summary to the manager.
// Without a snapshot archive the dashboard is still computed and sent.
func (s *Scheduler) DailySnapshot(ctx context.Context) error {
	dashboard, err := s.dashboard.ArchiveSnapshot(ctx, models.SystemCaller)
	if errors.Is(err, analytics.ErrSnapshotsDisabled) {
		s.logger.Warn("snapshot archive disabled, sending summary only")
		dashboard, err = s.dashboard.Dashboard(ctx, models.SystemCaller)
	}
	if err != nil {
		return err
	}
	return s.notify(ctx, commands.SummaryMessage(dashboard))
}

// LowStockAlert notifies the manager when any material is below its minimum stock.
func (s *Scheduler) LowStockAlert(ctx context.Context) error {
	materials, err := s.stock.LowStock(ctx, models.SystemCaller)
	if err != nil {
		return err
	}
	if len(materials) == 0 {
		s.logger.Debug("no materials below minimum stock")
		return nil
	}
	return s.notify(ctx, commands.LowStockMessage(materials))
}

func (s *Scheduler) notify(ctx context.Context, message string) error {
	if s.notifier == nil {
		s.logger.Warn("whatsapp disabled, notification not sent")
		return nil
	}
	if err := s.notifier.NotifyManager(ctx, message); err != nil {
		return fmt.Errorf("notify manager: %w", err)
	}
	return nil
}
