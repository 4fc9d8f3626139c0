// Package report persists health reports as timestamped JSON files.
// Per-cycle reports and daily summaries go to separate directories; files are
// written once and never updated. Old files are pruned during maintenance.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/config"
	"github.com/watchpost/sentinel/internal/models"
)

// Store writes health reports and daily summaries to disk and keeps the most
// recent cycle report in memory for the status API.
type Store struct {
	cycleDir  string
	dailyDir  string
	pruneAlso []string

	logger *zap.Logger

	mu     sync.Mutex
	latest *models.HealthReport
}

// NewStore creates a report store. All directories are created if missing.
// extraPruneDirs (e.g. the log directory) are swept by Prune alongside the
// report directories.
func NewStore(cfg config.ReportConfig, logger *zap.Logger, extraPruneDirs ...string) (*Store, error) {
	dirs := append([]string{cfg.Dir, cfg.DailyDir}, extraPruneDirs...)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, err
		}
	}
	return &Store{
		cycleDir:  cfg.Dir,
		dailyDir:  cfg.DailyDir,
		pruneAlso: extraPruneDirs,
		logger:    logger,
	}, nil
}

// WriteCycle persists one cycle report to <dir>/<YYYYMMDD_HHMM>.json and
// records it as the latest report. Returns the written path.
func (s *Store) WriteCycle(r models.HealthReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.cycleDir, r.Timestamp.Format("20060102_1504")+".json")
	if err := writeJSON(path, r); err != nil {
		return "", err
	}

	snapshot := r
	s.latest = &snapshot
	return path, nil
}

// WriteDaily persists a daily summary to <dailyDir>/<YYYYMMDD>_daily.json.
func (s *Store) WriteDaily(d models.DailySummary) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dailyDir, time.Now().UTC().Format("20060102")+"_daily.json")
	return path, writeJSON(path, d)
}

// Latest returns the most recent cycle report written through this store.
func (s *Store) Latest() (models.HealthReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return models.HealthReport{}, false
	}
	return *s.latest, true
}

// CycleCount returns the number of persisted cycle reports.
func (s *Store) CycleCount() int {
	entries, err := os.ReadDir(s.cycleDir)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			count++
		}
	}
	return count
}

// Prune removes report and log files older than maxAge from all managed
// directories. Returns the number of files removed. Failures are logged
// and do not abort the sweep.
func (s *Store) Prune(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	dirs := append([]string{s.cycleDir, s.dailyDir}, s.pruneAlso...)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.logger.Warn("Failed to read directory for pruning",
				zap.String("dir", dir),
				zap.Error(err))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := filepath.Ext(entry.Name())
			if ext != ".json" && ext != ".log" {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				s.logger.Warn("Failed to remove old file",
					zap.String("file", path),
					zap.Error(err))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("Pruned old report files", zap.Int("removed", removed))
	}
	return removed
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0640)
}
