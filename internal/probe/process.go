// Package probe implements the supervisor's health probes: process liveness,
// HTTP endpoint checks, and host resource sampling.
package probe

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// ProcessProbe answers whether a process matching a command-line substring
// is currently running. It holds no state; every call is a fresh query
// against the OS process table.
type ProcessProbe struct {
	logger *zap.Logger
}

// NewProcessProbe creates a new process liveness probe.
func NewProcessProbe(logger *zap.Logger) *ProcessProbe {
	return &ProcessProbe{logger: logger}
}

// IsRunning scans all OS processes and reports whether any command line
// contains the given substring. Entries that cannot be read (permission
// denied, process exited mid-scan) are skipped, not treated as failures.
func (p *ProcessProbe) IsRunning(ctx context.Context, name string) bool {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		p.logger.Error("Failed to list processes",
			zap.String("name", name),
			zap.Error(err))
		return false
	}

	for _, proc := range procs {
		cmdline, err := proc.CmdlineWithContext(ctx)
		if err != nil {
			continue
		}
		if cmdline != "" && strings.Contains(cmdline, name) {
			return true
		}
	}
	return false
}
