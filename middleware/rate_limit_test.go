package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type countingLimiter struct {
	counts map[string]int64
	err    error
}

func (l *countingLimiter) CheckLimit(_ context.Context, key string, limit int, window time.Duration) (bool, int64, time.Duration, error) {
	if l.err != nil {
		return false, 0, 0, l.err
	}
	l.counts[key]++
	n := l.counts[key]
	if n > int64(limit) {
		return false, n, 20 * time.Second, nil
	}
	return true, n, 0, nil
}

func rateLimitedRouter(limiter *countingLimiter, userID int64) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(func(c *gin.Context) {
		if userID > 0 {
			c.Set(string(UserIDKey), userID)
		}
	})
	r.Use(RateLimiter(limiter, 2, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimiter(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int64{}}
	r := rateLimitedRouter(limiter, 5)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "20", last.Header().Get("Retry-After"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, limiter.counts, "user:5")
}

func TestRateLimiter_AnonymousKeyedByIP(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int64{}}
	r := rateLimitedRouter(limiter, 0)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, limiter.counts, "ip:203.0.113.9")
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	r := rateLimitedRouter(&countingLimiter{err: errors.New("redis down")}, 5)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
