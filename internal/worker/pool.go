package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Pool runs submitted tasks on a bounded set of goroutines. Submit waits
// for the task to finish, so callers observe the same outcome as a direct
// call; the pool only isolates the calling goroutine from the work.
type Pool struct {
	sem *semaphore.Weighted
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Submit blocks until a slot is free, runs fn on its own goroutine and
// returns its error. If ctx ends before a slot frees up fn never runs.
func (p *Pool) Submit(ctx context.Context, fn func(ctx context.Context) error) error {
	const op = "worker.Pool.Submit"

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%s: task panicked: %v", op, r)
			}
		}()
		done <- fn(ctx)
	}()

	return <-done
}
