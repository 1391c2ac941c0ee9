package auth

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// RateLimiter decides whether a request identified by key may proceed
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter allows at most limit requests per key in any window
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      int
	windowSize time.Duration
	clock      clock.Clock
}

type window struct {
	requests []time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration, clk clock.Clock) *SlidingWindowLimiter {
	if clk == nil {
		clk = clock.New()
	}
	return &SlidingWindowLimiter{
		windows:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
		clock:      clk,
	}
}

// Allow checks if a request is allowed and records it when it is
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		w = &window{}
		l.windows[key] = w
	}

	now := l.clock.Now()
	w.requests = trim(w.requests, now.Add(-l.windowSize))
	if len(w.requests) >= l.limit {
		return false, nil
	}
	w.requests = append(w.requests, now)
	return true, nil
}

// Reset forgets the history of key
func (l *SlidingWindowLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// Sweep drops keys with no requests inside the current window and
// returns how many were dropped.
func (l *SlidingWindowLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := l.clock.Now().Add(-l.windowSize)
	removed := 0
	for key, w := range l.windows {
		w.requests = trim(w.requests, start)
		if len(w.requests) == 0 {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// trim drops timestamps at or before start; requests are kept in order
func trim(requests []time.Time, start time.Time) []time.Time {
	i := 0
	for i < len(requests) && !requests[i].After(start) {
		i++
	}
	return requests[i:]
}

// KeyedLimiter namespaces keys so one limiter can serve several callers
type KeyedLimiter struct {
	prefix  string
	limiter *SlidingWindowLimiter
}

// NewIPRateLimiter limits requests per client address
func NewIPRateLimiter(requestsPerMinute int, clk clock.Clock) *KeyedLimiter {
	return &KeyedLimiter{prefix: "ip:", limiter: NewSlidingWindowLimiter(requestsPerMinute, time.Minute, clk)}
}

// NewUserRateLimiter limits requests per authenticated user
func NewUserRateLimiter(requestsPerMinute int, clk clock.Clock) *KeyedLimiter {
	return &KeyedLimiter{prefix: "user:", limiter: NewSlidingWindowLimiter(requestsPerMinute, time.Minute, clk)}
}

// Allow checks if a request for key is allowed
func (l *KeyedLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.limiter.Allow(ctx, l.prefix+key)
}

// Reset forgets the history of key
func (l *KeyedLimiter) Reset(ctx context.Context, key string) error {
	return l.limiter.Reset(ctx, l.prefix+key)
}

// Sweep drops idle keys
func (l *KeyedLimiter) Sweep() int {
	return l.limiter.Sweep()
}
