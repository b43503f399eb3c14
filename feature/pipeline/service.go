package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Executor runs one scope.
type Executor interface {
	Run(ctx context.Context, scope Scope) (*Report, error)
}

// Service coalesces concurrent triggers of a scope into one run and keeps the
// report of the last finished run. Runs of different scopes never overlap;
// a trigger waits for the run in progress to finish first.
type Service struct {
	exec    Executor
	logger  *zap.Logger
	flights singleflight.Group
	running atomic.Int32

	// runMu serializes runs against the target.
	runMu sync.Mutex

	mu   sync.RWMutex
	last *Report
}

// NewService creates a trigger service around exec.
func NewService(exec Executor, logger *zap.Logger) *Service {
	return &Service{exec: exec, logger: logger}
}

// Trigger runs scope, or joins the run of scope already in flight. shared is
// true when the report comes from a run started by another caller.
func (s *Service) Trigger(ctx context.Context, scope Scope) (report *Report, shared bool, err error) {
	result, err, shared := s.flights.Do(string(scope), func() (interface{}, error) {
		s.runMu.Lock()
		defer s.runMu.Unlock()

		s.running.Add(1)
		defer s.running.Add(-1)

		report, err := s.exec.Run(ctx, scope)
		if report != nil {
			s.mu.Lock()
			s.last = report
			s.mu.Unlock()
		}
		if err != nil {
			s.logger.Error("Sync run failed", zap.String("scope", string(scope)), zap.Error(err))
		}
		return report, err
	})
	report, _ = result.(*Report)
	return report, shared, err
}

// Last returns the report of the last finished run, or nil.
func (s *Service) Last() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Running reports how many runs are in flight.
func (s *Service) Running() int {
	return int(s.running.Load())
}
