package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/config"
	"github.com/watchpost/sentinel/internal/models"
)

func newTestStore(t *testing.T) (*Store, config.ReportConfig, string) {
	t.Helper()
	base := t.TempDir()
	cfg := config.ReportConfig{
		Dir:        filepath.Join(base, "health_reports"),
		DailyDir:   filepath.Join(base, "daily_reports"),
		MaxAgeDays: 30,
	}
	logDir := filepath.Join(base, "logs")
	s, err := NewStore(cfg, zap.NewNop(), logDir)
	if err != nil {
		t.Fatal(err)
	}
	return s, cfg, logDir
}

func sampleReport(ts time.Time) models.HealthReport {
	return models.HealthReport{
		Timestamp: ts,
		Status:    models.StatusHealthy,
		Processes: map[string]models.ProcessStatus{
			"webhook": {Running: true, RestartCount: 2},
		},
		Resources:       models.ResourceStatus{CPUPercent: 20, MemoryPercent: 40, DiskFreeGB: 100},
		Endpoint:        models.EndpointStatus{Healthy: true, StatusCode: 200},
		Recommendations: []string{"System running optimally"},
	}
}

func TestWriteCycle_CreatesTimestampedFile(t *testing.T) {
	s, cfg, _ := newTestStore(t)

	ts := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)
	path, err := s.WriteCycle(sampleReport(ts))
	if err != nil {
		t.Fatal(err)
	}

	wantName := "20260825_1430.json"
	if filepath.Base(path) != wantName {
		t.Errorf("file name = %s, want %s", filepath.Base(path), wantName)
	}
	if filepath.Dir(path) != cfg.Dir {
		t.Errorf("file written to %s, want %s", filepath.Dir(path), cfg.Dir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded models.HealthReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Status != models.StatusHealthy {
		t.Errorf("decoded status = %s, want HEALTHY", decoded.Status)
	}
	if decoded.Processes["webhook"].RestartCount != 2 {
		t.Errorf("decoded restart count = %d, want 2", decoded.Processes["webhook"].RestartCount)
	}
}

func TestLatest_TracksMostRecentCycle(t *testing.T) {
	s, _, _ := newTestStore(t)

	if _, ok := s.Latest(); ok {
		t.Fatal("Latest reported a value before any write")
	}

	first := sampleReport(time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC))
	second := sampleReport(time.Date(2026, 8, 25, 10, 15, 0, 0, time.UTC))
	second.Status = models.StatusDegraded

	if _, err := s.WriteCycle(first); err != nil {
		t.Fatal(err)
	}
	if _, err := s.WriteCycle(second); err != nil {
		t.Fatal(err)
	}

	latest, ok := s.Latest()
	if !ok {
		t.Fatal("Latest reported nothing after writes")
	}
	if latest.Status != models.StatusDegraded {
		t.Errorf("Latest status = %s, want the second report's DEGRADED", latest.Status)
	}
	if s.CycleCount() != 2 {
		t.Errorf("CycleCount = %d, want 2", s.CycleCount())
	}
}

func TestWriteDaily_UsesDatedName(t *testing.T) {
	s, cfg, _ := newTestStore(t)

	path, err := s.WriteDaily(models.DailySummary{
		Date:          "2026-08-25",
		TotalRestarts: 3,
		Status:        models.StatusHealthy,
	})
	if err != nil {
		t.Fatal(err)
	}

	if filepath.Dir(path) != cfg.DailyDir {
		t.Errorf("daily report written to %s, want %s", filepath.Dir(path), cfg.DailyDir)
	}
	name := filepath.Base(path)
	if filepath.Ext(name) != ".json" || len(name) != len("20060102_daily.json") {
		t.Errorf("unexpected daily report name %s", name)
	}
}

func TestPrune_RemovesOnlyOldFiles(t *testing.T) {
	s, cfg, logDir := newTestStore(t)

	// Fresh report stays.
	if _, err := s.WriteCycle(sampleReport(time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC))); err != nil {
		t.Fatal(err)
	}

	// Backdated report and log file go.
	oldReport := filepath.Join(cfg.Dir, "20260601_0900.json")
	oldLog := filepath.Join(logDir, "20260601_system.log")
	for _, path := range []string{oldReport, oldLog} {
		if err := os.WriteFile(path, []byte("{}"), 0640); err != nil {
			t.Fatal(err)
		}
		stale := time.Now().Add(-45 * 24 * time.Hour)
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatal(err)
		}
	}

	// Non-report files are never touched.
	keep := filepath.Join(cfg.Dir, "README.txt")
	if err := os.WriteFile(keep, []byte("x"), 0640); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-45 * 24 * time.Hour)
	if err := os.Chtimes(keep, stale, stale); err != nil {
		t.Fatal(err)
	}

	removed := s.Prune(30 * 24 * time.Hour)
	if removed != 2 {
		t.Errorf("Prune removed %d files, want 2", removed)
	}

	if _, err := os.Stat(oldReport); !os.IsNotExist(err) {
		t.Error("old cycle report survived pruning")
	}
	if _, err := os.Stat(oldLog); !os.IsNotExist(err) {
		t.Error("old log file survived pruning")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("non-report file was pruned")
	}
	if s.CycleCount() != 1 {
		t.Errorf("CycleCount = %d after pruning, want 1", s.CycleCount())
	}
}
