package guesty

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrQuotaExhausted is returned when the daily upstream call quota is used up.
var ErrQuotaExhausted = errors.New("daily upstream quota exhausted")

// Usage is a snapshot of the limiter's daily quota.
type Usage struct {
	Used      int64
	Quota     int64
	Remaining int64
	ResetAt   time.Time
}

// RateLimiter gates outbound pricing calls with a token bucket and a
// rolling 24-hour quota that starts with the first call of each window.
type RateLimiter struct {
	bucket  *rate.Limiter
	quota   int64
	nowFunc func() time.Time

	mu        sync.Mutex
	used      int64
	windowEnd time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a limiter allowing perSecond calls with the
// given burst and at most dailyQuota calls per window.
func NewRateLimiter(
	perSecond float64,
	burst int,
	dailyQuota int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	r := &RateLimiter{
		bucket:  rate.NewLimiter(rate.Limit(perSecond), burst),
		quota:   dailyQuota,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Wait reserves one call, blocking on the token bucket. It fails fast
// with ErrQuotaExhausted once the window's quota is spent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	r.rollWindow()
	if r.used >= r.quota {
		used := r.used
		r.mu.Unlock()
		return fmt.Errorf("%w (%d/%d)", ErrQuotaExhausted, used, r.quota)
	}
	// Reserve the slot before blocking so concurrent callers cannot
	// overshoot the quota.
	r.used++
	windowEnd := r.windowEnd
	r.mu.Unlock()

	if err := r.bucket.Wait(ctx); err != nil {
		r.mu.Lock()
		if r.windowEnd.Equal(windowEnd) && r.used > 0 {
			r.used--
		}
		r.mu.Unlock()
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// Usage returns the current quota usage.
func (r *RateLimiter) Usage() Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollWindow()

	remaining := r.quota - r.used
	if remaining < 0 {
		remaining = 0
	}
	return Usage{
		Used:      r.used,
		Quota:     r.quota,
		Remaining: remaining,
		ResetAt:   r.windowEnd,
	}
}

// rollWindow must be called with r.mu held.
func (r *RateLimiter) rollWindow() {
	now := r.nowFunc()
	if r.windowEnd.IsZero() || !now.Before(r.windowEnd) {
		r.used = 0
		r.windowEnd = now.Add(24 * time.Hour)
	}
}
