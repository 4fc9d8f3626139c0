// Package supervisor implements the restart controller and the health
// aggregator that together keep the managed processes alive.
package supervisor

import (
	"time"

	"github.com/watchpost/sentinel/internal/config"
)

// ManagedProcess is one supervised process. The restart counter is
// monotonically non-decreasing for the life of the supervisor and lives
// only in memory: it resets when the supervisor itself restarts.
type ManagedProcess struct {
	Name         string
	Command      string
	Port         int
	RestartCount int
	LastRestart  *time.Time
}

// NewTable builds the managed-process table from configuration.
// The table is defined once at startup and mutated in place on restarts.
func NewTable(procs []config.ProcessConfig) []*ManagedProcess {
	table := make([]*ManagedProcess, 0, len(procs))
	for _, p := range procs {
		table = append(table, &ManagedProcess{
			Name:    p.Name,
			Command: p.Command,
			Port:    p.Port,
		})
	}
	return table
}
