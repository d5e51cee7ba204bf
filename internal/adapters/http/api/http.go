// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/assigner/internal/app"
	"github.com/okian/assigner/internal/domain/model"
	"github.com/okian/assigner/internal/domain/types"
	"github.com/okian/assigner/pkg/logger"
	"github.com/okian/assigner/pkg/metrics"
)

// Default request limits.
const (
	defaultMaxCandidates   = 1_000
	defaultMaxBodyBytes    = 1 << 20
	defaultMaxBulkRequests = 100
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Assign(ctx context.Context, task model.Task, candidates []model.Candidate) (service.Assignment, error)
	AssignBatch(ctx context.Context, items []service.BatchItem) []service.BatchOutcome
	ScorerName() string
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	assignHandler *AssignHandler
}

// Option applies a configuration option to the Server.
type Option func(*AssignHandler)

// WithMaxCandidates caps candidate_employees per request.
func WithMaxCandidates(n int) Option {
	return func(h *AssignHandler) {
		if n > 0 {
			h.maxCandidates = n
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *AssignHandler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithMaxBulkRequests caps the number of items of a bulk call.
func WithMaxBulkRequests(n int) Option {
	return func(h *AssignHandler) {
		if n > 0 {
			h.maxBulk = n
		}
	}
}

// WithDefaults sets the values used for omitted priority and deadline.
func WithDefaults(d types.Defaults) Option {
	return func(h *AssignHandler) {
		if d.DeadlineHours > 0 {
			h.defaults.DeadlineHours = d.DeadlineHours
		}
		if d.Priority != "" {
			h.defaults.Priority = d.Priority
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(h *AssignHandler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	return &Server{
		healthHandler: NewHealthHandler(deps.ScorerName),
		statsHandler:  NewStatsHandler(deps),
		assignHandler: NewAssignHandler(deps, opts...),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/predict-assignment", instrument(s.assignHandler.HandleAssign, "predict_assignment"))
	mux.HandleFunc("/predict-assignments", instrument(s.assignHandler.HandleBulk, "predict_assignments"))
	mux.HandleFunc("/healthz", instrument(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", instrument(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

// instrument applies the request id and metrics middleware.
func instrument(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(next, endpoint))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg})
}
