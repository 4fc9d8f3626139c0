// Host resource sampler — gathers CPU, memory, and root-filesystem usage.
// Uses gopsutil for cross-platform metrics.
package probe

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/config"
	"github.com/watchpost/sentinel/internal/models"
)

const bytesPerGB = 1 << 30

// ResourceSampler reads current host utilization and warns on threshold
// breaches. Thresholds come from the injected config, not hardcoded here.
type ResourceSampler struct {
	thresholds config.ThresholdConfig
	rootPath   string
	logger     *zap.Logger
}

// NewResourceSampler creates a sampler for the root filesystem with the
// given thresholds.
func NewResourceSampler(thresholds config.ThresholdConfig, logger *zap.Logger) *ResourceSampler {
	return &ResourceSampler{
		thresholds: thresholds,
		rootPath:   "/",
		logger:     logger,
	}
}

// Sample gathers CPU utilization (blocking for the configured sample
// interval), virtual memory usage, and root disk usage.
func (s *ResourceSampler) Sample(ctx context.Context) (models.ResourceStatus, error) {
	var status models.ResourceStatus

	cpuPcts, err := cpu.PercentWithContext(ctx, s.thresholds.CPUSampleInterval.Duration, false)
	if err != nil {
		return status, fmt.Errorf("sampling cpu: %w", err)
	}
	if len(cpuPcts) > 0 {
		status.CPUPercent = cpuPcts[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return status, fmt.Errorf("sampling memory: %w", err)
	}
	status.MemoryPercent = vm.UsedPercent
	status.MemoryAvailableGB = float64(vm.Available) / bytesPerGB

	usage, err := disk.UsageWithContext(ctx, s.rootPath)
	if err != nil {
		return status, fmt.Errorf("sampling disk: %w", err)
	}
	status.DiskPercent = usage.UsedPercent
	status.DiskFreeGB = float64(usage.Free) / bytesPerGB

	s.logThresholdWarnings(status)

	return status, nil
}

// logThresholdWarnings emits a warning for each breached cut point.
// Comparisons are strict: a reading exactly at the threshold does not warn.
func (s *ResourceSampler) logThresholdWarnings(status models.ResourceStatus) {
	if status.CPUPercent > s.thresholds.CPUWarnPercent {
		s.logger.Warn("High CPU usage",
			zap.Float64("cpu_percent", status.CPUPercent),
			zap.Float64("threshold", s.thresholds.CPUWarnPercent))
	}
	if status.MemoryPercent > s.thresholds.MemoryWarnPercent {
		s.logger.Warn("High memory usage",
			zap.Float64("memory_percent", status.MemoryPercent),
			zap.Float64("threshold", s.thresholds.MemoryWarnPercent))
	}
	if status.DiskPercent > s.thresholds.DiskWarnPercent {
		s.logger.Warn("Low disk space",
			zap.Float64("disk_percent", status.DiskPercent),
			zap.Float64("threshold", s.thresholds.DiskWarnPercent))
	}
}
