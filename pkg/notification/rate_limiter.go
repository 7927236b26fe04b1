package notification

import (
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketRateLimiter allows capacity sends at once and refills one
// token every refillRate
type TokenBucketRateLimiter struct {
	limiter *rate.Limiter
}

// NewTokenBucketRateLimiter creates a new token bucket rate limiter
func NewTokenBucketRateLimiter(capacity int, refillRate time.Duration) *TokenBucketRateLimiter {
	limit := rate.Inf
	if refillRate > 0 {
		limit = rate.Every(refillRate)
	}
	return &TokenBucketRateLimiter{
		limiter: rate.NewLimiter(limit, capacity),
	}
}

// Allow checks if a request is allowed under the rate limit
func (tb *TokenBucketRateLimiter) Allow() bool {
	return tb.limiter.Allow()
}
