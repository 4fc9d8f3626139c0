// Package models defines the health data structures produced by the supervisor.
// These structures are serialized to JSON for persisted reports and the status API.
package models

import "time"

// Status is the overall health classification of one monitoring cycle.
type Status string

const (
	StatusHealthy  Status = "HEALTHY"
	StatusDegraded Status = "DEGRADED"
)

// ProcessStatus records one managed process's state at report time.
// Running reflects the pre-restart liveness check; a process restarted
// during the same cycle still shows Running=false in that cycle's report.
type ProcessStatus struct {
	Running      bool       `json:"running"`
	RestartCount int        `json:"restart_count"`
	LastRestart  *time.Time `json:"last_restart,omitempty"`
}

// ResourceStatus is a flat snapshot of host resource utilization.
type ResourceStatus struct {
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	MemoryAvailableGB float64 `json:"memory_available_gb"`
	DiskPercent       float64 `json:"disk_percent"`
	DiskFreeGB        float64 `json:"disk_free_gb"`
}

// EndpointStatus is the outcome of one HTTP health-check probe.
type EndpointStatus struct {
	Healthy      bool    `json:"healthy"`
	StatusCode   int     `json:"status_code,omitempty"`
	ResponseTime float64 `json:"response_time_seconds,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// HealthReport is the snapshot produced once per aggregation cycle.
// It is a pure value object: created fresh each cycle and never updated.
type HealthReport struct {
	Timestamp       time.Time                `json:"timestamp"`
	Uptime          string                   `json:"system_uptime"`
	Status          Status                   `json:"overall_status"`
	Processes       map[string]ProcessStatus `json:"processes"`
	Resources       ResourceStatus           `json:"resources"`
	Endpoint        EndpointStatus           `json:"endpoint"`
	Recommendations []string                 `json:"recommendations"`
}

// AllRunning reports whether every managed process was found alive.
func (r *HealthReport) AllRunning() bool {
	for _, p := range r.Processes {
		if !p.Running {
			return false
		}
	}
	return true
}

// TotalRestarts sums restart counters across all managed processes.
func (r *HealthReport) TotalRestarts() int {
	total := 0
	for _, p := range r.Processes {
		total += p.RestartCount
	}
	return total
}

// DailySummary condenses one day's standing into a few headline numbers.
type DailySummary struct {
	Date          string  `json:"date"`
	TotalRestarts int     `json:"total_restarts"`
	CPUPercent    float64 `json:"avg_cpu"`
	MemoryPercent float64 `json:"avg_memory"`
	Status        Status  `json:"uptime_status"`
}
