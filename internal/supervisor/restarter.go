// Restart controller — force-terminates a dead process's remnants, relaunches
// the configured command detached, and verifies the result after a settle delay.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/config"
)

// ProcessProber reports whether a process matching a command-line substring
// is currently running.
type ProcessProber interface {
	IsRunning(ctx context.Context, name string) bool
}

// Restarter kills and relaunches managed processes. All failures are logged
// and swallowed: restarts are best-effort and the next scheduled cycle
// re-detects a process that is still down. There is no tight retry loop.
type Restarter struct {
	prober ProcessProber
	grace  time.Duration
	settle time.Duration
	logger *zap.Logger
}

// NewRestarter creates a restart controller with the configured grace and
// settle periods.
func NewRestarter(prober ProcessProber, cfg config.RestartConfig, logger *zap.Logger) *Restarter {
	return &Restarter{
		prober: prober,
		grace:  cfg.GracePeriod.Duration,
		settle: cfg.SettlePeriod.Duration,
		logger: logger,
	}
}

// Restart kills any process matching the managed process's name, waits the
// grace period, relaunches the configured command as a detached child, and
// re-probes after the settle period. The restart counter increases by exactly
// one per invocation.
func (r *Restarter) Restart(ctx context.Context, mp *ManagedProcess) {
	r.logger.Warn("Restarting process", zap.String("name", mp.Name))

	if err := r.killMatching(ctx, mp.Name); err != nil {
		r.logger.Error("Failed to kill process remnants",
			zap.String("name", mp.Name),
			zap.Error(err))
	}

	sleepCtx(ctx, r.grace)

	if err := r.spawn(mp.Command); err != nil {
		r.logger.Error("Failed to spawn process",
			zap.String("name", mp.Name),
			zap.String("command", mp.Command),
			zap.Error(err))
	}

	now := time.Now().UTC()
	mp.RestartCount++
	mp.LastRestart = &now

	r.logger.Info("Process restarted",
		zap.String("name", mp.Name),
		zap.Int("attempt", mp.RestartCount))

	// Wait for the replacement to come up before verifying.
	sleepCtx(ctx, r.settle)

	if r.prober.IsRunning(ctx, mp.Name) {
		r.logger.Info("Process verified running", zap.String("name", mp.Name))
	} else {
		r.logger.Error("Process failed to start", zap.String("name", mp.Name))
	}
}

// killMatching sends a kill signal to every process whose command line
// contains the given substring. The supervisor's own process is excluded.
// Unreadable entries are skipped.
func (r *Restarter) killMatching(ctx context.Context, name string) error {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return fmt.Errorf("listing processes: %w", err)
	}

	self := int32(os.Getpid())
	for _, proc := range procs {
		if proc.Pid == self {
			continue
		}
		cmdline, err := proc.CmdlineWithContext(ctx)
		if err != nil || cmdline == "" || !strings.Contains(cmdline, name) {
			continue
		}
		if err := proc.KillWithContext(ctx); err != nil {
			r.logger.Debug("Failed to kill process",
				zap.Int32("pid", proc.Pid),
				zap.Error(err))
			continue
		}
		r.logger.Info("Killed process",
			zap.Int32("pid", proc.Pid),
			zap.String("name", name))
	}
	return nil
}

// spawn launches the replacement command via the host shell as a detached
// child. The child is released immediately: the supervisor does not wait on
// it beyond the periodic liveness probe.
func (r *Restarter) spawn(command string) error {
	cmd := detachedCommand(command)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting command: %w", err)
	}
	return cmd.Process.Release()
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
