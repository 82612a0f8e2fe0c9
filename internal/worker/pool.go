// Package worker wraps a shared goroutine pool used to bound concurrency of
// provider calls (embedding, generation) across in-flight requests.
package worker

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Pool is a fixed-size worker pool. All provider-bound work in the service
// funnels through one Pool so a burst of requests cannot fan out into an
// unbounded number of upstream calls.
type Pool struct {
	inner *ants.Pool
}

// NewPool creates a pool with the given number of workers.
func NewPool(size int) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	inner, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &Pool{inner: inner}, nil
}

// Submit schedules fn on the pool without waiting for it to run.
func (p *Pool) Submit(fn func()) error {
	return p.inner.Submit(fn)
}

// Running reports the number of currently busy workers.
func (p *Pool) Running() int {
	return p.inner.Running()
}

// Drain stops the pool, waiting up to timeout for in-flight work to finish.
func (p *Pool) Drain(timeout time.Duration) error {
	return p.inner.ReleaseTimeout(timeout)
}

// Run submits fn to the pool and waits for its result. If ctx is cancelled
// before fn completes, Run returns the context error; fn keeps its worker
// until it returns, so callers should pass ctx-aware functions.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)

	if err := p.Submit(func() {
		v, err := fn()
		done <- outcome{val: v, err: err}
	}); err != nil {
		var zero T
		return zero, err
	}

	select {
	case out := <-done:
		return out.val, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
