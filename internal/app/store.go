// Package service holds the report store: the current report, the loading flag
// and the last error, updated by the two remote operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/taskbounty/internal/domain/ranking"
	"github.com/okian/taskbounty/internal/domain/report"
	"github.com/okian/taskbounty/internal/domain/request"
	"github.com/okian/taskbounty/pkg/logger"
	"github.com/okian/taskbounty/pkg/metrics"
)

// Operation labels.
const (
	OpDemo = "demo"
	OpRun  = "run"
)

// Remote is the decision service as seen by the store.
type Remote interface {
	RunDemo(ctx context.Context, seed, rounds int) (*report.Report, error)
	RunTask(ctx context.Context, req request.RunRequest) (*report.Report, error)
}

// Status is the coarse store state.
type Status string

// Store states.
const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSettled Status = "settled"
)

// Store owns the current report. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	remote Remote

	// State
	report    *report.Report
	errMsg    string
	inflight  int
	issued    uint64
	applied   uint64
	updatedAt time.Time

	// Configuration
	discardStale bool

	logger logger.Logger
}

// New constructs a Store over the given remote.
func New(remote Remote, opts ...Option) *Store {
	s := &Store{
		remote: remote,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunDemo loads a seeded demo report. It reports whether the response was applied;
// failures are recorded in the store and never returned.
func (s *Store) RunDemo(ctx context.Context, seed, rounds int) bool {
	return s.run(ctx, OpDemo, func(ctx context.Context) (*report.Report, error) {
		return s.remote.RunDemo(ctx, seed, rounds)
	}, logger.Int("seed", seed), logger.Int("rounds", rounds))
}

// RunTask submits a task and loads the resulting report. See RunDemo.
func (s *Store) RunTask(ctx context.Context, req request.RunRequest) bool {
	return s.run(ctx, OpRun, func(ctx context.Context) (*report.Report, error) {
		return s.remote.RunTask(ctx, req)
	}, logger.String("title", req.Title), logger.Int("criteria", len(req.AcceptanceCriteria)))
}

func (s *Store) run(ctx context.Context, op string, call func(context.Context) (*report.Report, error), fields ...logger.Field) bool {
	token := s.begin()
	defer s.end()

	s.logger.Info(ctx, "report requested", append(fields, logger.String("operation", op), logger.Uint64("token", token))...)
	rep, err := invoke(ctx, call)
	return s.settle(ctx, op, token, rep, err)
}

// invoke runs call, converting a panic or a nil report into an error.
func invoke(ctx context.Context, call func(context.Context) (*report.Report, error)) (rep *report.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			rep, err = nil, fmt.Errorf("%w: %v", ErrRemotePanic, r)
		}
	}()
	rep, err = call(ctx)
	if err == nil && rep == nil {
		err = ErrEmptyReport
	}
	return rep, err
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.issued++
	metrics.UpdateStoreInflight(s.inflight)
	return s.issued
}

func (s *Store) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	metrics.UpdateStoreInflight(s.inflight)
}

func (s *Store) settle(ctx context.Context, op string, token uint64, rep *report.Report, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.discardStale && token < s.issued {
		metrics.RecordStoreOutcome(op, metrics.OutcomeStale)
		s.logger.Info(ctx, "stale response discarded",
			logger.String("operation", op),
			logger.Uint64("token", token),
			logger.Uint64("latest", s.issued))
		return false
	}

	if err != nil {
		s.errMsg = err.Error()
		outcome := metrics.OutcomeError
		if errors.Is(err, ErrRemotePanic) {
			outcome = metrics.OutcomePanic
		}
		metrics.RecordStoreOutcome(op, outcome)
		s.logger.Error(ctx, "report request failed", logger.String("operation", op), logger.Error(err))
		return false
	}

	s.report = rep
	s.errMsg = ""
	s.applied++
	s.updatedAt = time.Now()
	metrics.RecordStoreOutcome(op, metrics.OutcomeSuccess)
	metrics.UpdateReportSize(len(rep.Bids), len(rep.Events))

	if cerr := ranking.CheckWinner(rep); cerr != nil {
		s.logger.Warn(ctx, "winner flags disagree with summary", logger.Error(cerr))
	}
	s.logger.Info(ctx, "report applied",
		logger.String("operation", op),
		logger.String("winner", rep.Winner.FreelancerID),
		logger.Int("bids", len(rep.Bids)))
	return true
}

// Loading reports whether any call is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Snapshot returns a consistent copy of the store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Loading:   s.inflight > 0,
		Report:    s.report,
		Err:       s.errMsg,
		Applied:   s.applied,
		UpdatedAt: s.updatedAt,
	}
}

// GetStats returns store counters for the stats endpoint.
func (s *Store) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"inflight":       s.inflight,
		"issued":         s.issued,
		"applied":        s.applied,
		"has_report":     s.report != nil,
		"has_error":      s.errMsg != "",
		"discard_stale":  s.discardStale,
		"last_update_ms": int64(0),
	}
	if !s.updatedAt.IsZero() {
		stats["last_update_ms"] = s.updatedAt.UnixMilli()
	}
	return stats
}
