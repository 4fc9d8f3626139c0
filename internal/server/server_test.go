package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/models"
)

type stubReports struct {
	report models.HealthReport
	ok     bool
}

func (s *stubReports) Latest() (models.HealthReport, bool) {
	return s.report, s.ok
}

func degradedReport() models.HealthReport {
	return models.HealthReport{
		Timestamp: time.Now().UTC(),
		Status:    models.StatusDegraded,
		Processes: map[string]models.ProcessStatus{
			"webhook": {Running: false, RestartCount: 4},
		},
		Recommendations: []string{"Investigate frequent process crashes"},
	}
}

func TestHealth_NoReportYet(t *testing.T) {
	srv := New(":0", &stubReports{}, zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want healthy when no report exists", body["status"])
	}
}

func TestHealth_ReflectsDegradedCycle(t *testing.T) {
	srv := New(":0", &stubReports{report: degradedReport(), ok: true}, zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "degraded" {
		t.Errorf("status = %q, want degraded", body["status"])
	}
}

func TestReport_ReturnsLatest(t *testing.T) {
	srv := New(":0", &stubReports{report: degradedReport(), ok: true}, zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var report models.HealthReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Status != models.StatusDegraded {
		t.Errorf("report status = %s, want DEGRADED", report.Status)
	}
	if report.Processes["webhook"].RestartCount != 4 {
		t.Errorf("restart count = %d, want 4", report.Processes["webhook"].RestartCount)
	}
}

func TestReport_NotFoundBeforeFirstCycle(t *testing.T) {
	srv := New(":0", &stubReports{}, zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before the first cycle", rec.Code)
	}
}

func TestProcesses_ReturnsSnapshot(t *testing.T) {
	srv := New(":0", &stubReports{report: degradedReport(), ok: true}, zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/processes", nil))

	var procs map[string]models.ProcessStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &procs); err != nil {
		t.Fatal(err)
	}
	if procs["webhook"].Running {
		t.Error("webhook marked running, want false")
	}
}
