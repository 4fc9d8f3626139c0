// Package server exposes the supervisor's own status over HTTP so it can be
// probed the same way it probes its companion services.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/models"
)

// ReportSource yields the most recent health report, if one exists yet.
type ReportSource interface {
	Latest() (models.HealthReport, bool)
}

// Server serves the status API.
type Server struct {
	http    *http.Server
	reports ReportSource
	logger  *zap.Logger
}

// New creates a status API server listening on addr.
func New(addr string, reports ReportSource, logger *zap.Logger) *Server {
	s := &Server{
		reports: reports,
		logger:  logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/report", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/processes", s.handleProcesses).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving in a background goroutine and shuts down cleanly when
// the context is cancelled.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.logger.Info("Status API listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Status API failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.http.Shutdown(shutdownCtx)
	}()
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// handleHealth reports the supervisor's own liveness plus the overall status
// of its last cycle, when one exists.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if report, ok := s.reports.Latest(); ok && report.Status == models.StatusDegraded {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReport returns the full latest health report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.reports.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no report yet"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleProcesses returns the per-process slice of the latest report.
func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	report, ok := s.reports.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no report yet"})
		return
	}
	writeJSON(w, http.StatusOK, report.Processes)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
