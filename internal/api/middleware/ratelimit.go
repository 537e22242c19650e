package middleware

import (
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ckousik/rootwalk/internal/api/models"
)

// The /resolve endpoint turns one HTTP request into several outbound DNS
// queries, so it carries per-client admission control. Each client IP gets a
// token bucket: tokens replenish at a constant rate, every request consumes
// one, and short bursts up to the bucket capacity are allowed.

const (
	rateLimitMaxEntries      = 4096
	rateLimitCleanupInterval = 60 * time.Second
)

// TokenBucket is a per-key token bucket rate limiter.
// Safe for concurrent use.
type TokenBucket struct {
	rate  float64 // Tokens added per second
	burst float64 // Maximum tokens in a bucket

	mu          sync.Mutex
	lastCleanup time.Time
	lastUpdate  map[string]time.Time
	tokens      map[string]float64
}

// NewTokenBucket creates a limiter replenishing rate tokens per second per
// key, with the given burst capacity.
func NewTokenBucket(rate float64, burst int) *TokenBucket {
	return &TokenBucket{
		rate:        rate,
		burst:       float64(burst),
		lastCleanup: time.Now(),
		lastUpdate:  map[string]time.Time{},
		tokens:      map[string]float64{},
	}
}

// Allow consumes a token for key if one is available. A rate or burst of
// zero or less disables limiting entirely.
func (l *TokenBucket) Allow(key string) bool {
	if l == nil || l.rate <= 0.0 || l.burst <= 0.0 {
		return true
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) > rateLimitCleanupInterval {
		l.cleanupLocked(now)
	}

	last, exists := l.lastUpdate[key]
	if !exists && len(l.lastUpdate) >= rateLimitMaxEntries {
		l.cleanupLocked(now)
		if len(l.lastUpdate) >= rateLimitMaxEntries {
			// Still at capacity - deny new clients rather than grow
			return false
		}
	}
	if !exists {
		l.lastUpdate[key] = now
		l.tokens[key] = l.burst - 1.0
		return true
	}

	elapsed := now.Sub(last).Seconds()
	l.lastUpdate[key] = now

	tokens := l.tokens[key]
	if elapsed > 0 {
		tokens = math.Min(l.burst, tokens+(elapsed*l.rate))
	}

	if tokens >= 1.0 {
		l.tokens[key] = tokens - 1.0
		return true
	}
	l.tokens[key] = tokens
	return false
}

// cleanupLocked drops keys that have not been seen for a full cleanup
// interval. Must be called with l.mu held.
func (l *TokenBucket) cleanupLocked(now time.Time) {
	staleBefore := now.Add(-rateLimitCleanupInterval)
	for k, last := range l.lastUpdate {
		if !last.After(staleBefore) {
			delete(l.lastUpdate, k)
			delete(l.tokens, k)
		}
	}
	l.lastCleanup = now
}

// RateLimit limits each client IP to rate requests per second with the given
// burst. A rate or burst of zero or less yields a no-op middleware.
func RateLimit(rate float64, burst int) gin.HandlerFunc {
	if rate <= 0.0 || burst <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	bucket := NewTokenBucket(rate, burst)
	return func(c *gin.Context) {
		if !bucket.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
