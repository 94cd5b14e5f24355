package build

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool bounds concurrent work to n goroutines via a buffered channel
// throttle, directly grounded in zoekt build.Builder's own `throttle chan
// int` (_examples/sourcegraph-zoekt/build/builder.go), with
// golang.org/x/sync/errgroup replacing its hand-rolled WaitGroup +
// errMu/buildError pair: errgroup already collects the first error and
// cancels a shared context, which is the substitute spec §5 calls for
// instead of a bespoke submit_task/parallel_for primitive.
type Pool struct {
	g        *errgroup.Group
	ctx      context.Context
	throttle chan struct{}
}

// NewPool creates a pool that runs at most n functions concurrently.
func NewPool(ctx context.Context, n int) *Pool {
	if n < 1 {
		n = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	return &Pool{g: g, ctx: gctx, throttle: make(chan struct{}, n)}
}

// Go schedules fn, blocking until a slot is free. fn receives the pool's
// (possibly already-cancelled) context so long-running work can check for
// cancellation at document boundaries per spec §5.
func (p *Pool) Go(fn func(ctx context.Context) error) {
	p.throttle <- struct{}{}
	p.g.Go(func() error {
		defer func() { <-p.throttle }()
		return fn(p.ctx)
	})
}

// Wait blocks until every scheduled fn has returned, yielding the first
// non-nil error (if any).
func (p *Pool) Wait() error {
	return p.g.Wait()
}
