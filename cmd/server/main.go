package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/metrics"
	"github.com/mamadbah2/feedlot/internal/repository/mongodb"
	"github.com/mamadbah2/feedlot/internal/repository/sheets"
	"github.com/mamadbah2/feedlot/internal/repository/sqlstore"
	"github.com/mamadbah2/feedlot/internal/scheduler"
	"github.com/mamadbah2/feedlot/internal/server/handlers"
	"github.com/mamadbah2/feedlot/internal/server/router"
	"github.com/mamadbah2/feedlot/internal/service/analytics"
	cattlesvc "github.com/mamadbah2/feedlot/internal/service/cattle"
	commandsvc "github.com/mamadbah2/feedlot/internal/service/commands"
	feedsvc "github.com/mamadbah2/feedlot/internal/service/feed"
	healthsvc "github.com/mamadbah2/feedlot/internal/service/health"
	"github.com/mamadbah2/feedlot/internal/service/reports"
	salessvc "github.com/mamadbah2/feedlot/internal/service/sales"
	whatsappsvc "github.com/mamadbah2/feedlot/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/feedlot/pkg/clients/whatsapp"
	"github.com/mamadbah2/feedlot/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Logging.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	db, err := sqlstore.Open(cfg.Database, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := sqlstore.Close(db); err != nil {
			baseLogger.Error("failed to close database", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := sqlstore.Migrate(migrateCtx, db)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	checker, err := authz.New(baseLogger.Named("authz"))
	if err != nil {
		baseLogger.Fatal("failed to init authorization", zap.Error(err))
	}

	m := metrics.New()
	store := sqlstore.New()

	cattleSvc := cattlesvc.NewService(db, store, checker, m, baseLogger.Named("svc.cattle"))
	feedSvc := feedsvc.NewService(db, store, checker, m, baseLogger.Named("svc.feed"))
	healthSvc := healthsvc.NewService(db, store, checker, baseLogger.Named("svc.health"))
	salesSvc := salessvc.NewService(db, store, checker, m, baseLogger.Named("svc.sales"))
	analyticsSvc := analytics.NewService(db, store, checker, baseLogger.Named("svc.analytics"))

	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		snapshots, err := mongodb.NewSnapshotRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := snapshots.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		analyticsSvc.UseSnapshotStore(snapshots)
	} else {
		baseLogger.Warn("MONGODB_URI missing, dashboard snapshots will not be archived")
	}

	var publisher reports.Publisher
	if cfg.Sheets.Enabled() {
		sheetsPublisher, err := sheets.NewPublisher(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets publisher", zap.Error(err))
		}
		publisher = sheetsPublisher
	} else {
		baseLogger.Warn("google sheets credentials missing, report publishing disabled")
	}
	reportsSvc := reports.NewService(db, store, checker, publisher, m, baseLogger.Named("svc.reports"))

	routes := router.Handlers{
		Cattle:    handlers.NewCattleHandler(cattleSvc, healthSvc, baseLogger.Named("handlers.cattle")),
		Health:    handlers.NewHealthHandler(healthSvc, baseLogger.Named("handlers.health")),
		Feed:      handlers.NewFeedHandler(feedSvc, baseLogger.Named("handlers.feed")),
		Sales:     handlers.NewSalesHandler(salesSvc, baseLogger.Named("handlers.sales")),
		Dashboard: handlers.NewDashboardHandler(analyticsSvc, baseLogger.Named("handlers.dashboard")),
		Reports:   handlers.NewReportHandler(reportsSvc, baseLogger.Named("handlers.reports")),
	}

	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		dispatcher := commandsvc.NewService(cattleSvc, feedSvc, analyticsSvc, baseLogger.Named("svc.commands"))
		messagingSvc := whatsappsvc.NewService(cfg.WhatsApp, whatsappclient.NewClient(cfg.WhatsApp), dispatcher, baseLogger.Named("svc.whatsapp"))
		routes.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		if cfg.WhatsApp.ManagerNumber != "" {
			notifier = messagingSvc
		} else {
			baseLogger.Warn("WHATSAPP_MANAGER_NUMBER missing, scheduled summaries will only be logged")
		}
	} else {
		baseLogger.Warn("whatsapp credentials missing, command intake and notifications disabled")
	}

	engine := router.New(routes, m, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, analyticsSvc, feedSvc, notifier, m, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("db_driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
