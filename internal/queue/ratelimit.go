package queue

import (
	"sync"
	"time"
)

// RateBucketSize and RateWindow fix the admission policy: no more than
// RateBucketSize requests per key within one fixed window of RateWindow,
// which opens at the first request after the previous window expired.
// Windows do not slide, so admissions at the end of one window and the
// start of the next are counted separately. golang.org/x/time/rate implements a token bucket with
// continuous refill, which cannot produce the lazy fixed-window reset
// this policy calls for (full quota available again only once the
// window has fully elapsed, not continuously trickling back), so this
// is a direct counter-and-deadline implementation instead.
const (
	RateBucketSize = 10
	RateWindow     = 60 * time.Second
)

type bucket struct {
	count    int
	deadline time.Time
}

// RateLimiter is a fixed-window limiter keyed by client identity
// (X-Forwarded-For, or a loopback literal when absent). Buckets are
// garbage-collected lazily: a bucket past its deadline is reset in
// place on the next request that touches it rather than swept by a
// background goroutine.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewRateLimiter constructs a limiter with the standard bucket size and
// window.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow reports whether a request for key is admitted under the current
// window, incrementing the bucket's counter as a side effect.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b, ok := r.buckets[key]
	if !ok || now.After(b.deadline) {
		b = &bucket{count: 0, deadline: now.Add(RateWindow)}
		r.buckets[key] = b
	}

	if b.count >= RateBucketSize {
		return false
	}
	b.count++
	return true
}
