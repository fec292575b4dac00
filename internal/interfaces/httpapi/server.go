package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type readinessCheck struct {
	name string
	dep  Pinger
}

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// Server exposes health and progress of a running batch.
type Server struct {
	checks    []readinessCheck
	metrics   *Metrics
	buildInfo BuildInfo
	runID     string
}

func NewServer(rpc Pinger, metrics *Metrics, buildInfo BuildInfo, runID string) (*Server, error) {
	if rpc == nil {
		return nil, errors.New("rpc status dependency must not be nil")
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{
		checks:    []readinessCheck{{name: "rpc", dep: rpc}},
		metrics:   metrics,
		buildInfo: buildInfo,
		runID:     runID,
	}, nil
}

// AddReadinessCheck makes /readyz also depend on dep. Checks run in the
// order they were added; the first failure is reported by name.
func (s *Server) AddReadinessCheck(name string, dep Pinger) {
	if dep == nil {
		return
	}
	s.checks = append(s.checks, readinessCheck{name: name, dep: dep})
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/version", s.handleVersion)
	return mux
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, check := range s.checks {
		if err := check.dep.Ping(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, check.name+" not ready")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type statusResponse struct {
	RunID string `json:"run_id"`
	Snapshot
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap := s.metrics.Snapshot()
	respondJSON(w, http.StatusOK, statusResponse{
		RunID:         s.runID,
		Snapshot:      snap,
		UptimeSeconds: time.Since(snap.StartTime).Seconds(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.buildInfo)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
