// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func rateLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doPing(r *gin.Engine, remoteAddr string) int {
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Minute), 2)
	r := rateLimitedRouter(rl)

	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.1:1000"))
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Minute), 1)
	r := rateLimitedRouter(rl)

	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.1:1000"))

	// A different caller still has a full bucket.
	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.2:1000"))
}
