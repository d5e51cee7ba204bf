// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/assigner/internal/domain/features"
	"github.com/okian/assigner/internal/domain/model"
	"github.com/okian/assigner/internal/domain/ranking"
	"github.com/okian/assigner/internal/domain/scoring"
	"github.com/okian/assigner/pkg/logger"
	"github.com/okian/assigner/pkg/metrics"
)

const defaultBulkConcurrency = 8

// Assignment is the outcome of ranking one task's candidates.
type Assignment struct {
	// Index of the selected candidate in the request's candidate list.
	Index     int
	Candidate model.Candidate
	Score     float64
	Features  model.FeatureVector
}

// BatchItem is one independent request of a bulk call.
type BatchItem struct {
	Task       model.Task
	Candidates []model.Candidate
}

// BatchOutcome pairs a bulk item with its assignment or error.
type BatchOutcome struct {
	Assignment Assignment
	Err        error
}

// Service ranks candidates for tasks with the configured scorer.
type Service struct {
	mu sync.RWMutex

	scorer          scoring.Scorer
	bulkConcurrency int

	// State
	started   bool
	startedAt time.Time

	assigned atomic.Int64
	failed   atomic.Int64
	batches  atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScorer sets the scorer used for ranking. Without it the built-in
// linear model is used.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithBulkConcurrency bounds how many bulk items are ranked in parallel.
func WithBulkConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bulkConcurrency = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		bulkConcurrency: defaultBulkConcurrency,
		logger:          nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start prepares the service for requests.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.scorer == nil {
		s.scorer = scoring.Instrument(scoring.DefaultLinearModel())
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "assignment service started",
		logger.String("scorer", s.scorer.Name()),
		logger.Int("bulkConcurrency", s.bulkConcurrency),
	)
	return nil
}

// Stop marks the service as stopped. In-flight calls complete normally.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "assignment service stopped",
		logger.Any("assigned", s.assigned.Load()),
		logger.Any("failed", s.failed.Load()),
	)
}

func (s *Service) running() (scoring.Scorer, logger.Logger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.scorer, s.logger, nil
}

// Assign builds features for every candidate, scores them in one batch and
// returns the best one.
func (s *Service) Assign(ctx context.Context, task model.Task, candidates []model.Candidate) (Assignment, error) {
	scorer, log, err := s.running()
	if err != nil {
		return Assignment{}, err
	}

	start := time.Now()
	metrics.RecordCandidatesPerRequest(len(candidates))

	a, err := assign(ctx, scorer, task, candidates)
	latency := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordAssignmentLatency(latency)

	outcome := outcomeOf(err)
	metrics.RecordAssignment(outcome)
	if err != nil {
		s.failed.Add(1)
		metrics.RecordErrorByComponent("service", outcome)
		metrics.RecordErrorLatency("service", outcome, latency)
		log.Warn(ctx, "assignment failed",
			logger.String("task", task.ID),
			logger.Int("candidates", len(candidates)),
			logger.String("outcome", outcome),
			logger.Error(err),
		)
		return Assignment{}, err
	}

	s.assigned.Add(1)
	log.Debug(ctx, "task assigned",
		logger.String("task", task.ID),
		logger.String("candidate", a.Candidate.ID),
		logger.Int("index", a.Index),
		logger.Float64("score", a.Score),
		logger.Int("candidates", len(candidates)),
	)
	return a, nil
}

func assign(ctx context.Context, scorer ranking.Scorer, task model.Task, candidates []model.Candidate) (Assignment, error) {
	vectors, err := features.Build(task, candidates)
	if err != nil {
		return Assignment{}, err
	}

	best, err := ranking.Rank(ctx, vectors, scorer)
	if err != nil {
		return Assignment{}, err
	}

	return Assignment{
		Index:     best.Index,
		Candidate: candidates[best.Index],
		Score:     best.Score,
		Features:  vectors[best.Index],
	}, nil
}

// AssignBatch ranks independent requests in parallel, bounded by the bulk
// concurrency. Outcomes are returned in input order; one failing item does
// not affect the others.
func (s *Service) AssignBatch(ctx context.Context, items []BatchItem) []BatchOutcome {
	out := make([]BatchOutcome, len(items))

	s.mu.RLock()
	limit := s.bulkConcurrency
	s.mu.RUnlock()

	s.batches.Add(1)
	metrics.RecordBulkRequestSize(len(items))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			a, err := s.Assign(ctx, item.Task, item.Candidates)
			out[i] = BatchOutcome{Assignment: a, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ScorerName reports the active scorer backend.
func (s *Service) ScorerName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scorer == nil {
		return ""
	}
	return s.scorer.Name()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"bulkConcurrency": s.bulkConcurrency,
		"assigned":        s.assigned.Load(),
		"failed":          s.failed.Load(),
		"batches":         s.batches.Load(),
	}

	if s.started {
		stats["scorer"] = s.scorer.Name()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}

	return stats
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAssigned
	case errors.Is(err, features.ErrInvalidTask):
		return metrics.OutcomeInvalidTask
	case errors.Is(err, ranking.ErrEmptyCandidateSet):
		return metrics.OutcomeNoCandidates
	case errors.Is(err, ranking.ErrScoring):
		return metrics.OutcomeScoringError
	default:
		return metrics.OutcomeError
	}
}
