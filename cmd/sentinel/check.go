package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchpost/sentinel/internal/models"
	"github.com/watchpost/sentinel/internal/supervisor"
	"github.com/watchpost/sentinel/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one aggregation cycle and print a readiness score",
	Long: `Run a single health aggregation cycle, print a human-readable system
readout, and score 24/7 readiness from 0 to 100.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	agg := buildAggregator(cfg, logger)
	report := agg.Report(context.Background())

	printReadiness(report)
	return nil
}

func printReadiness(report models.HealthReport) {
	out := ui.NewUI()

	out.Header("24/7 READINESS CHECK")
	out.Separator()

	out.KeyValue("Overall Status", string(report.Status))
	out.KeyValue("System Uptime", report.Uptime)
	out.KeyValue("CPU Usage", fmt.Sprintf("%.1f%%", report.Resources.CPUPercent))
	out.KeyValue("Memory Usage", fmt.Sprintf("%.1f%%", report.Resources.MemoryPercent))
	out.KeyValue("Disk Usage", fmt.Sprintf("%.1f%%", report.Resources.DiskPercent))

	out.Println("")
	out.Info("Process Status:")
	for name, status := range report.Processes {
		if status.Running {
			out.Success(fmt.Sprintf("%s: Running", name))
		} else {
			out.Error(fmt.Sprintf("%s: Down", name))
		}
	}

	out.Println("")
	if report.Endpoint.Healthy {
		out.Success(fmt.Sprintf("Endpoint healthy (%.0f ms)", report.Endpoint.ResponseTime*1000))
	} else {
		out.Error(fmt.Sprintf("Endpoint down: %s", report.Endpoint.Error))
	}

	out.Println("")
	out.Info("Recommendations:")
	for _, rec := range report.Recommendations {
		out.ListItem(rec)
	}

	score := supervisor.ReadinessScore(report, cfg.Thresholds)

	out.Println("")
	out.KeyValue("24/7 Readiness Score", fmt.Sprintf("%d/100", score))

	verdict := supervisor.Verdict(score)
	switch {
	case score >= 80:
		out.Success(verdict)
	case score >= 60:
		out.Warning(verdict)
	default:
		out.Error(verdict)
	}
}
