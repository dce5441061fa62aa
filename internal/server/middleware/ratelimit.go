package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinereserve/backend/internal/audit"
)

// RateLimiter is a fixed-window per-key counter. Keys are client IPs; the
// window resets wholesale when it elapses, which bounds memory without a
// background sweeper.
type RateLimiter struct {
	mu          sync.Mutex
	counts      map[string]int
	windowStart time.Time

	max    int
	window time.Duration
	nowF   func() time.Time
}

// NewRateLimiter allows max requests per key per window. now nil means
// time.Now.
func NewRateLimiter(max int, window time.Duration, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		counts:      map[string]int{},
		windowStart: now(),
		max:         max,
		window:      window,
		nowF:        now,
	}
}

// Allow reports whether key may make another request in the current window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.nowF()
	if now.Sub(rl.windowStart) >= rl.window {
		rl.counts = map[string]int{}
		rl.windowStart = now
	}
	if rl.counts[key] >= rl.max {
		return false
	}
	rl.counts[key]++
	return true
}

// RateLimit rejects requests over the per-IP budget with 429. Applied to
// the login and signup routes to slow credential stuffing.
func RateLimit(rl *RateLimiter, auditLog *audit.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			if auditLog != nil {
				auditLog.Event(c.Request.Context(), audit.ActionRateLimited, 0,
					zap.String("path", c.FullPath()))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
