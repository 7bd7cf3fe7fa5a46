package backup

import (
	"context"
	"log/slog"
	"time"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/runlock"
)

// Runner triggers the external full-database backup job. The backup must not
// overlap a freeze, so it takes the freeze guard exclusively and skips the
// cycle when any freeze holds it.
type Runner struct {
	guard   *runlock.Guard
	trigger func(ctx context.Context) error
}

func NewRunner(guard *runlock.Guard, trigger func(ctx context.Context) error) *Runner {
	if trigger == nil {
		trigger = func(context.Context) error {
			// The actual backup facility is external; nothing to do locally.
			return nil
		}
	}
	return &Runner{guard: guard, trigger: trigger}
}

// Run executes one backup cycle. Skipping under contention is not an error:
// the next scheduled cycle retries.
func (r *Runner) Run(ctx context.Context) error {
	release, ok := r.guard.TryExclusive()
	if !ok {
		slog.Warn("backup skipped, freeze in progress")
		return nil
	}
	defer release()

	start := time.Now()
	if err := r.trigger(ctx); err != nil {
		return err
	}
	slog.Info("backup completed", "duration", time.Since(start))
	return nil
}
