package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/config"
	"github.com/watchpost/sentinel/internal/models"
	"github.com/watchpost/sentinel/internal/report"
	"github.com/watchpost/sentinel/internal/scheduler"
	"github.com/watchpost/sentinel/internal/server"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the monitoring loop indefinitely",
	Long: `Run the supervisor loop: a health check every few minutes, a persisted
full report on a longer cadence, a daily summary, and weekly maintenance.
The loop runs until interrupted.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	store, err := report.NewStore(cfg.Reports, logger, cfg.Logging.Dir)
	if err != nil {
		return err
	}

	agg := buildAggregator(cfg, logger)

	if cfg.Server.Enabled {
		server.New(cfg.Server.Addr, store, logger).Start(ctx)
	}

	logger.Info("Starting 24/7 monitoring",
		zap.String("version", version),
		zap.Int("processes", len(cfg.Processes)),
		zap.String("endpoint", cfg.Endpoint.URL))

	// Initial full cycle before the schedule kicks in.
	initial := agg.Report(ctx)
	if _, err := store.WriteCycle(initial); err != nil {
		logger.Error("Failed to persist initial report", zap.Error(err))
	}
	logger.Info("Initial health check",
		zap.String("status", string(initial.Status)))

	sched := scheduler.New(cfg.Schedule, logger)

	sched.Every("health-check", cfg.Schedule.HealthCheckEach.Duration, func(ctx context.Context) error {
		_, allRunning := agg.CheckProcesses(ctx)
		if !allRunning {
			logger.Warn("System health degraded - processes restarted")
		}
		return nil
	})

	sched.Every("full-report", cfg.Schedule.FullReportEach.Duration, func(ctx context.Context) error {
		rep := agg.Report(ctx)
		if rep.Status == models.StatusDegraded {
			logger.Warn("System degraded",
				zap.Any("recommendations", rep.Recommendations))
		} else {
			logger.Info("System healthy - all services operational")
		}
		_, err := store.WriteCycle(rep)
		return err
	})

	dailyHour, dailyMinute, _ := config.ParseClock(cfg.Schedule.DailyReportAt)
	sched.DailyAt("daily-report", dailyHour, dailyMinute, func(ctx context.Context) error {
		rep := agg.Report(ctx)
		summary := models.DailySummary{
			Date:          time.Now().Format("2006-01-02"),
			TotalRestarts: rep.TotalRestarts(),
			CPUPercent:    rep.Resources.CPUPercent,
			MemoryPercent: rep.Resources.MemoryPercent,
			Status:        rep.Status,
		}
		logger.Info("Daily report",
			zap.String("date", summary.Date),
			zap.Int("total_restarts", summary.TotalRestarts),
			zap.String("status", string(summary.Status)))
		_, err := store.WriteDaily(summary)
		return err
	})

	maintDay, _ := config.ParseWeekday(cfg.Schedule.MaintenanceDay)
	maintHour, maintMinute, _ := config.ParseClock(cfg.Schedule.MaintenanceAt)
	sched.WeeklyAt("maintenance", maintDay, maintHour, maintMinute, func(ctx context.Context) error {
		logger.Info("Starting weekly maintenance")
		store.Prune(time.Duration(cfg.Reports.MaxAgeDays) * 24 * time.Hour)
		agg.RestartAll(ctx)
		logger.Info("Weekly maintenance complete")
		return nil
	})

	sched.Run(ctx)
	logger.Info("Supervisor stopped")
	return nil
}
