package dynamo

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// Workers returns n when positive, otherwise the available hardware parallelism.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// ForEach runs fn for every index in [0, n) on at most workers goroutines and
// blocks until all of them return. A failing or panicking call never stops its
// siblings; its error is reported at its index.
func ForEach(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers(workers))

	for i := 0; i < n; i++ {
		g.Go(func() error {
			errs[i] = safeCall(gctx, i, fn)
			return nil
		})
	}

	_ = g.Wait()
	return errs
}

func safeCall(ctx context.Context, i int, fn func(context.Context, int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx, i)
}
