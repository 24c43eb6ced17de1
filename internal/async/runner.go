// Package async runs best-effort background writes that must never affect
// the response already being served.
package async

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const defaultTimeout = 5 * time.Second

// Runner spawns detached tasks with panic recovery and a per-task deadline.
// Wait lets the server drain outstanding tasks on shutdown.
type Runner struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{timeout: timeout}
}

// Go runs fn in its own goroutine. The task context keeps the values of ctx
// but not its cancellation, so a finished request does not abort the write.
// Errors and panics are logged and swallowed.
func (r *Runner) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("background task panicked",
					"task", name,
					"error", rec,
					"stack", string(debug.Stack()),
				)
			}
		}()

		taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := fn(taskCtx); err != nil {
			slog.Warn("background task failed", "task", name, "error", err)
		}
	}()
}

// Wait blocks until every spawned task returns or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
