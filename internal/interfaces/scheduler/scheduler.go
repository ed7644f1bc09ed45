// Package scheduler drives ingestion cycles on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

// Runner is the ingestion service as seen by the timer.
type Runner interface {
	RunCycle(ctx context.Context, input usecase.CycleInput) (usecase.CycleResult, error)
	MarkStopped(ctx context.Context)
	MarkDisabled(ctx context.Context, reason error)
}

type Config struct {
	Enabled    bool
	Interval   time.Duration
	RunOnStart bool
	Logger     *logging.Logger
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	cfg    Config
	logger *logging.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	ticks   sync.WaitGroup
}

func New(runner Runner, cfg Config) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("scheduler runner is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be > 0")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("scheduler")

	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
	if _, err := s.cron.AddFunc("@every "+cfg.Interval.String(), s.tick); err != nil {
		return nil, fmt.Errorf("register ingestion timer: %w", err)
	}
	return s, nil
}

// Start arms the timer. It is a no-op when disabled or already started.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Enabled {
		s.logger.Info("ingestion scheduler disabled")
		return
	}
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.cron.Start()
	s.logger.Info("ingestion scheduler started", "interval", s.cfg.Interval.String(), "run_on_start", s.cfg.RunOnStart)

	if s.cfg.RunOnStart {
		s.ticks.Add(1)
		go func() {
			defer s.ticks.Done()
			s.tick()
		}()
	}
}

// Stop halts the timer. A cycle already running is left to finish; the
// returned context is done once it has.
func (s *Scheduler) Stop(ctx context.Context) context.Context {
	s.mu.Lock()
	first := !s.stopped
	s.stopped = true
	s.mu.Unlock()

	done := s.cron.Stop()
	if first {
		s.runner.MarkStopped(ctx)
		s.logger.InfoContext(ctx, "ingestion scheduler stopped")
	}

	waitCtx, cancel := context.WithCancel(context.Background())
	go func() {
		defer cancel()
		<-done.Done()
		s.ticks.Wait()
	}()
	return waitCtx
}

// Halt is the latch hook: the upstream refused us for good, so the timer
// stops and the display state says why.
func (s *Scheduler) Halt(reason error) {
	ctx := context.Background()
	s.logger.ErrorContext(ctx, "ingestion halted", "error", reason)
	s.Stop(ctx)
	s.runner.MarkDisabled(ctx, reason)
}

func (s *Scheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Scheduler) tick() {
	if s.Stopped() {
		return
	}
	ctx := context.Background()
	result, err := s.runner.RunCycle(ctx, usecase.CycleInput{})
	switch {
	case errors.Is(err, usecase.ErrCycleInProgress):
		s.logger.InfoContext(ctx, "tick skipped: cycle in progress")
	case err != nil:
		s.logger.ErrorContext(ctx, "scheduled cycle failed", "error", err)
	default:
		s.logger.DebugContext(ctx, "scheduled cycle done", "run_id", result.RunID, "status", result.Status)
	}
}

// cronLogger adapts the process logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
