package cron

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJobOnInterval(t *testing.T) {
	s := NewScheduler()

	var runs atomic.Int64
	done := make(chan struct{})
	s.AddJob("counter", 5*time.Millisecond, func(ctx context.Context) error {
		if runs.Add(1) == 3 {
			close(done)
		}
		return nil
	})

	s.Start()
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not reach three runs in time")
	}
	require.GreaterOrEqual(t, runs.Load(), int64(3))
}

func TestScheduler_StopWaitsForJobs(t *testing.T) {
	s := NewScheduler()

	var stopped atomic.Bool
	started := make(chan struct{})
	var once sync.Once
	s.AddJob("blocker", 5*time.Millisecond, func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		stopped.Store(true)
		return ctx.Err()
	})

	s.Start()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}
	s.Stop()

	assert.True(t, stopped.Load())
}

func TestScheduler_FailingJobKeepsTicking(t *testing.T) {
	s := NewScheduler()

	var runs atomic.Int64
	done := make(chan struct{})
	s.AddJob("flaky", 5*time.Millisecond, func(ctx context.Context) error {
		if runs.Add(1) == 2 {
			close(done)
		}
		return errors.New("backup target unreachable")
	})

	s.Start()
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run again after a failure")
	}
}
