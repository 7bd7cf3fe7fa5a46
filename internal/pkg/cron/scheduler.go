// Package cron runs periodic maintenance work, such as the scheduled
// database backup, on fixed intervals for the lifetime of the process.
package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// Scheduler owns a set of interval jobs. Jobs are registered before Start
// and each one ticks on its own goroutine until Stop.
type Scheduler struct {
	mu     sync.Mutex
	jobs   []job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a named job to run every interval.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job{name: name, interval: interval, run: fn})
	slog.Info("Scheduled job registered", "name", name, "interval", interval)
}

// Start launches one ticker goroutine per registered job.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}

	slog.Info("Scheduler started", "job_count", len(s.jobs))
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) loop(j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Scheduled job stopping", "name", j.name)
			return
		case <-ticker.C:
			start := time.Now()
			if err := j.run(s.ctx); err != nil {
				slog.Error("Scheduled job failed", "name", j.name, "error", err, "duration", time.Since(start))
				continue
			}
			slog.Debug("Scheduled job completed", "name", j.name, "duration", time.Since(start))
		}
	}
}
