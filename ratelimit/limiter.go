// Package ratelimit provides an optional, auxiliary concurrency cap on
// outstanding destination PUTs, independent of the PartMigrator's k.
// Adapted from the teacher's AdaptiveRateLimiter
// (cmd/s3_server/rate_limiter.go): same Wait(ctx)-blocks-until-a-slot-or-
// cancellation shape, simplified from a token-bucket-with-adaptive-rate
// down to a fixed-size semaphore, since the migration pipeline needs a
// concurrency ceiling, not a requests-per-second ceiling.
package ratelimit

import (
	"context"
	"sync/atomic"
)

// Limiter caps the number of concurrently outstanding operations. A
// zero-value Limiter (or one constructed with limit <= 0) imposes no
// cap, so leaving it unconfigured never changes the PartMigrator's own
// concurrency bound from spec.md §8.
type Limiter struct {
	slots    chan struct{}
	allowed  uint64
	rejected uint64
}

// New returns a Limiter that admits at most `limit` concurrent
// operations. limit <= 0 means unlimited.
func New(limit int) *Limiter {
	if limit <= 0 {
		return &Limiter{}
	}
	return &Limiter{slots: make(chan struct{}, limit)}
}

// Acquire blocks until a slot is free or ctx is done. The caller must
// call the returned release func exactly once.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if l == nil || l.slots == nil {
		return func() {}, nil
	}

	select {
	case l.slots <- struct{}{}:
		atomic.AddUint64(&l.allowed, 1)
		return func() { <-l.slots }, nil
	case <-ctx.Done():
		atomic.AddUint64(&l.rejected, 1)
		return nil, ctx.Err()
	}
}

// Stats reports how many Acquire calls were admitted vs. cancelled while
// waiting.
type Stats struct {
	Allowed  uint64
	Rejected uint64
}

func (l *Limiter) Stats() Stats {
	if l == nil {
		return Stats{}
	}
	return Stats{Allowed: atomic.LoadUint64(&l.allowed), Rejected: atomic.LoadUint64(&l.rejected)}
}
