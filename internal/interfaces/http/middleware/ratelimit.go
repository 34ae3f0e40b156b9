package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// TokenBucketLimiter is a per-client in-memory token bucket. Buckets refill
// continuously at ratePerSecond up to burst.
type TokenBucketLimiter struct {
	ratePerSecond float64
	burst         float64

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// NewTokenBucketLimiter builds a limiter. Non-positive parameters fall back
// to 10 req/s with a burst of 20.
func NewTokenBucketLimiter(ratePerSecond float64, burst int) *TokenBucketLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &TokenBucketLimiter{
		ratePerSecond: ratePerSecond,
		burst:         float64(burst),
		buckets:       map[string]*bucket{},
		now:           time.Now,
	}
}

// Allow reports whether the key may proceed, consuming one token if so.
func (l *TokenBucketLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastFill: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastFill).Seconds() * l.ratePerSecond
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastFill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit rejects clients that exceed their bucket with 429.
func RateLimit(limiter *TokenBucketLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   gin.H{"code": errors.CodeRateLimit.String(), "message": "rate limit exceeded"},
			})
			return
		}
		c.Next()
	}
}
