package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is the in-process fixed-window limiter. It backs requests
// when Redis is not configured or unreachable, so its state is per instance.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

// window tracks usage within one one-second slot.
type window struct {
	start int64 // Unix second the window covers.
	used  int
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*window)}
}

// Allow counts the request against the key's current one-second window.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	sec := now.Unix()
	reset := time.Unix(sec+1, 0).UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[key]
	if w == nil || w.start != sec {
		w = &window{start: sec}
		l.windows[key] = w
	}
	if w.used >= limit {
		return Result{Reset: reset}, nil
	}
	w.used++
	return Result{Allowed: true, Remaining: limit - w.used, Reset: reset}, nil
}
