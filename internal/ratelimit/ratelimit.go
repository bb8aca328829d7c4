// Package ratelimit throttles outbound vendor requests to a fixed quota per
// rolling one-minute window.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks callers so that no more than the configured number of
// requests start within any 60-second interval.
//
// Requests are spaced evenly at minute/N rather than bucketed: a token
// bucket with burst N would admit up to 2N starts inside one rolling window
// (N burst plus N refills), which violates the quota. Even spacing is the
// conservative reading of the bound. FIFO fairness among waiters is not
// guaranteed.
type Limiter struct {
	bucket *rate.Limiter
}

// New creates a Limiter allowing perMinute request starts per rolling
// minute. perMinute values below 1 are clamped to 1.
func New(perMinute int) *Limiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

// Wait blocks until a request slot is available or the context is done.
// The limiter is reusable for the life of a run.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}
