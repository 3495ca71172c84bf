package http

import (
	"sync"
	"time"
)

// rateLimiter caps sends per user in fixed one-minute windows.
type rateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	start    time.Time
	counters map[int64]int
	now      func() time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		limit:    limit,
		window:   time.Minute,
		counters: make(map[int64]int),
		now:      time.Now,
	}
}

func (r *rateLimiter) allow(userID int64) bool {
	if r == nil || r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if now := r.now(); now.Sub(r.start) >= r.window {
		r.start = now
		clear(r.counters)
	}
	r.counters[userID]++
	return r.counters[userID] <= r.limit
}

// release returns one unit of budget taken by allow in the current window.
func (r *rateLimiter) release(userID int64) {
	if r == nil || r.limit <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.counters[userID] > 0 {
		r.counters[userID]--
	}
}
