// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/desoy/desoy-backend/internal/config"
)

// clientIdleTTL is how long a caller may stay idle before its token
// bucket is dropped.
const clientIdleTTL = 5 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with one token bucket per
// caller. Idle buckets are pruned in the background.
type RateLimiter struct {
	clients map[string]*client
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
	}
	go rl.prune()
	return rl
}

func (rl *RateLimiter) prune() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, c := range rl.clients {
			if time.Since(c.lastSeen) > clientIdleTTL {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GeneralRateLimit throttles all traffic to the configured requests per
// second, with a burst of the same size.
func GeneralRateLimit(cfg *config.Config) gin.HandlerFunc {
	rps := cfg.RateLimit.RequestsPerSecond
	if rps < 1 {
		rps = 10
	}
	return NewRateLimiter(rate.Limit(rps), rps).Middleware()
}

// AuthRateLimit throttles credential endpoints to a configured number of
// attempts per minute.
func AuthRateLimit(cfg *config.Config) gin.HandlerFunc {
	return NewRateLimiter(perMinute(cfg.RateLimit.AuthPerMinute, 5)).Middleware()
}

// UploadRateLimit throttles document uploads per minute.
func UploadRateLimit(cfg *config.Config) gin.HandlerFunc {
	return NewRateLimiter(perMinute(cfg.RateLimit.UploadPerMinute, 10)).Middleware()
}

func perMinute(n, fallback int) (rate.Limit, int) {
	if n < 1 {
		n = fallback
	}
	return rate.Every(time.Minute / time.Duration(n)), n
}
