// Package ratelimit enforces per-user request rate limits with a fixed
// one-second window, backed by Redis when configured and by process memory
// otherwise.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}

// UserKey builds the limiter key for a user. An anonymous request (user 0)
// gets no key and is never limited.
func UserKey(userID uint64) string {
	if userID == 0 {
		return ""
	}
	return fmt.Sprintf("u:%d", userID)
}
