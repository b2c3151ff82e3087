// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package throttle gates calls to rate-limited upstream services.

A [Limiter] combines two budgets:

  - Rate: at most N requests per interval (token bucket from x/time/rate).
  - Concurrency: at most M requests in flight (weighted semaphore from x/sync).

A Limiter only ever delays a caller. The sole failure mode is the caller's own
context being cancelled while it waits.

Limiters are plain values owned by the client that uses them. There is no
process-wide registry; sharing happens by sharing the owning client.
*/
package throttle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter enforces a request rate and a maximum number of in-flight calls.
type Limiter struct {
	bucket  *rate.Limiter
	permits *semaphore.Weighted
}

// New creates a Limiter allowing requests per interval with at most
// concurrent calls in flight. The bucket holds a single token so that
// requests are spread evenly across the interval.
func New(requests int, interval time.Duration, concurrent int64) *Limiter {
	if requests < 1 {
		requests = 1
	}
	if concurrent < 1 {
		concurrent = 1
	}

	every := interval / time.Duration(requests)
	return &Limiter{
		bucket:  rate.NewLimiter(rate.Every(every), 1),
		permits: semaphore.NewWeighted(concurrent),
	}
}

// PerSecond creates a Limiter allowing qps requests per second.
func PerSecond(qps float64, concurrent int64) *Limiter {
	if concurrent < 1 {
		concurrent = 1
	}
	return &Limiter{
		bucket:  rate.NewLimiter(rate.Limit(qps), 1),
		permits: semaphore.NewWeighted(concurrent),
	}
}

// Wait blocks until a request slot is available under the rate budget.
func (limiter *Limiter) Wait(ctx context.Context) error {
	if err := limiter.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("throttle: wait: %w", err)
	}
	return nil
}

// Acquire blocks until an in-flight permit is available. The returned
// release func must be called exactly once when the call completes.
func (limiter *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if err := limiter.permits.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("throttle: acquire: %w", err)
	}
	return func() { limiter.permits.Release(1) }, nil
}

// Enter waits for a rate slot and then acquires a permit.
func (limiter *Limiter) Enter(ctx context.Context) (release func(), err error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return limiter.Acquire(ctx)
}
