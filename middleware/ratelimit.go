package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a per-client-IP token bucket.
type RateLimiter struct {
	tokens     map[string]float64
	lastRefill map[string]time.Time
	mu         sync.Mutex
	rate       float64 // tokens per second
	bucketSize float64
	now        func() time.Time
}

func NewRateLimiter(rate float64, bucketSize float64) *RateLimiter {
	return &RateLimiter{
		tokens:     make(map[string]float64),
		lastRefill: make(map[string]time.Time),
		rate:       rate,
		bucketSize: bucketSize,
		now:        time.Now,
	}
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if _, exists := rl.lastRefill[key]; !exists {
		rl.tokens[key] = rl.bucketSize
		rl.lastRefill[key] = now
	}

	elapsed := now.Sub(rl.lastRefill[key])
	rl.tokens[key] = min(rl.bucketSize, rl.tokens[key]+elapsed.Seconds()*rl.rate)
	rl.lastRefill[key] = now

	if rl.tokens[key] < 1 {
		return false
	}
	rl.tokens[key]--
	return true
}

// Prune forgets buckets idle for longer than idle. Such buckets would be
// full again anyway.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idle)
	removed := 0
	for key, last := range rl.lastRefill {
		if last.Before(cutoff) {
			delete(rl.lastRefill, key)
			delete(rl.tokens, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
