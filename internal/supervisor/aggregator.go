// Health aggregator — runs all probes for the managed-process table and the
// configured endpoint, restarts dead processes, and combines the results into
// one HealthReport per cycle.
package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/config"
	"github.com/watchpost/sentinel/internal/models"
)

// ResourceSampler reads current host utilization.
type ResourceSampler interface {
	Sample(ctx context.Context) (models.ResourceStatus, error)
}

// EndpointChecker probes the companion HTTP health endpoint.
type EndpointChecker interface {
	Check(ctx context.Context) models.EndpointStatus
}

// RestartController relaunches a dead managed process.
type RestartController interface {
	Restart(ctx context.Context, mp *ManagedProcess)
}

// Aggregator orchestrates one monitoring cycle: process checks (restarting
// what is dead), resource sample, endpoint probe, overall status, and
// recommendations — strictly in that order.
type Aggregator struct {
	table      []*ManagedProcess
	prober     ProcessProber
	sampler    ResourceSampler
	endpoint   EndpointChecker
	restarter  RestartController
	thresholds config.ThresholdConfig
	logger     *zap.Logger
}

// NewAggregator creates a health aggregator over the given process table.
func NewAggregator(
	table []*ManagedProcess,
	prober ProcessProber,
	sampler ResourceSampler,
	endpoint EndpointChecker,
	restarter RestartController,
	thresholds config.ThresholdConfig,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		table:      table,
		prober:     prober,
		sampler:    sampler,
		endpoint:   endpoint,
		restarter:  restarter,
		thresholds: thresholds,
		logger:     logger,
	}
}

// CheckProcesses probes every managed process and invokes the restart
// controller exactly once for each process found not running. The returned
// map records the pre-restart liveness of each process.
func (a *Aggregator) CheckProcesses(ctx context.Context) (map[string]models.ProcessStatus, bool) {
	statuses := make(map[string]models.ProcessStatus, len(a.table))
	allRunning := true

	for _, mp := range a.table {
		running := a.prober.IsRunning(ctx, mp.Name)
		if !running {
			allRunning = false
			a.restarter.Restart(ctx, mp)
		}
		statuses[mp.Name] = models.ProcessStatus{
			Running:      running,
			RestartCount: mp.RestartCount,
			LastRestart:  mp.LastRestart,
		}
	}

	return statuses, allRunning
}

// Report runs one full aggregation cycle and returns the resulting snapshot.
// A failed resource sample is logged and leaves zeroed resource fields; it
// does not by itself degrade the overall status.
func (a *Aggregator) Report(ctx context.Context) models.HealthReport {
	processes, allRunning := a.CheckProcesses(ctx)

	resources, err := a.sampler.Sample(ctx)
	if err != nil {
		a.logger.Error("Resource sample failed", zap.Error(err))
	}

	endpoint := a.endpoint.Check(ctx)

	status := models.StatusHealthy
	if !allRunning || !endpoint.Healthy {
		status = models.StatusDegraded
	}

	report := models.HealthReport{
		Timestamp: time.Now().UTC(),
		Uptime:    systemUptime(ctx),
		Status:    status,
		Processes: processes,
		Resources: resources,
		Endpoint:  endpoint,
	}
	report.Recommendations = a.recommendations(resources, report.TotalRestarts())

	return report
}

// RestartAll force-restarts every managed process. Used by the weekly
// maintenance job for a fresh start.
func (a *Aggregator) RestartAll(ctx context.Context) {
	for _, mp := range a.table {
		a.restarter.Restart(ctx, mp)
	}
}

// recommendations applies the ordered recommendation policy. Every applicable
// recommendation is included; when none applies the single "running optimally"
// entry is returned.
func (a *Aggregator) recommendations(res models.ResourceStatus, totalRestarts int) []string {
	var recs []string

	if res.CPUPercent > a.thresholds.CPUScalePercent {
		recs = append(recs, "Consider scaling to multiple servers")
	}
	if res.MemoryPercent > a.thresholds.MemoryLeakPercent {
		recs = append(recs, "Monitor memory leaks, consider server upgrade")
	}
	if res.DiskFreeGB < a.thresholds.DiskFreeMinGB {
		recs = append(recs, "Clean up old logs and data files")
	}
	if totalRestarts > a.thresholds.RestartBudget {
		recs = append(recs, "Investigate frequent process crashes")
	}

	if len(recs) == 0 {
		recs = append(recs, "System running optimally")
	}
	return recs
}

// ReadinessScore folds a report into a 0-100 heuristic for human
// interpretation: overall health 40, CPU and memory headroom 20 each,
// endpoint health 20.
func ReadinessScore(r models.HealthReport, th config.ThresholdConfig) int {
	score := 0
	if r.Status == models.StatusHealthy {
		score += 40
	}
	if r.Resources.CPUPercent < th.CPUScalePercent {
		score += 20
	}
	if r.Resources.MemoryPercent < th.MemoryLeakPercent {
		score += 20
	}
	if r.Endpoint.Healthy {
		score += 20
	}
	return score
}

// Verdict maps a readiness score to its human-readable verdict line.
func Verdict(score int) string {
	switch {
	case score >= 80:
		return "SYSTEM READY FOR 24/7 OPERATION!"
	case score >= 60:
		return "System mostly ready - address recommendations"
	default:
		return "System needs fixes before 24/7 operation"
	}
}

// systemUptime formats host uptime in days. Returns "unknown" when the host
// statistics are unavailable.
func systemUptime(ctx context.Context) string {
	seconds, err := host.UptimeWithContext(ctx)
	if err != nil {
		return "unknown"
	}
	return fmt.Sprintf("%.1f days", float64(seconds)/86400)
}
