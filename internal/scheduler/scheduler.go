package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Job is a unit of periodic work. RunOnce must be safe to call repeatedly;
// each job decides internally whether its moment has come.
type Job interface {
	Name() string
	RunOnce(ctx context.Context)
}

// Scheduler drives registered jobs on a fixed tick. It replaces ad-hoc
// per-request sweeps with a single owned loop.
type Scheduler struct {
	interval time.Duration
	jobs     []Job
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

func New(interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		interval: interval,
		logger:   logger,
	}
}

// Register adds a job before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	s.logger.Info("scheduler job registered", "job", job.Name())
}

// Start launches the tick loop. Each job runs in the loop goroutine; a
// panicking job is logged and the loop keeps going.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.started = true
	jobs := s.jobs
	s.mu.Unlock()

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("scheduler started", "interval", s.interval, "jobs", len(jobs))

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return
			case <-ticker.C:
				for _, job := range jobs {
					s.runJob(ctx, job)
				}
			}
		}
	}()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler job panicked",
				"job", job.Name(),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	job.RunOnce(ctx)
}

// Stop cancels the loop and waits for the current tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done, started := s.cancel, s.done, s.started
	s.started = false
	s.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-done
}
