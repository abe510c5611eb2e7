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

	"arxiv-digest-api/internal/config"
)

type fakeLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (f *fakeLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	f.calls++
	return f.allowed, f.err
}

func newLimitedEngine(cfg config.RateLimitConfig, limiter RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/v1/flashcards", RateLimit(cfg, limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestRateLimitAllows(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	engine := newLimitedEngine(config.RateLimitConfig{Enabled: true, RequestsPerWindow: 5, Window: time.Minute}, limiter)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/flashcards", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, limiter.calls)
}

func TestRateLimitRejectsOverBudget(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	engine := newLimitedEngine(config.RateLimitConfig{Enabled: true, RequestsPerWindow: 5, Window: time.Minute}, limiter)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/flashcards", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimitFailsOpenOnLimiterError(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	engine := newLimitedEngine(config.RateLimitConfig{Enabled: true, RequestsPerWindow: 5, Window: time.Minute}, limiter)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/flashcards", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitDisabledSkipsLimiter(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	engine := newLimitedEngine(config.RateLimitConfig{Enabled: false}, limiter)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/flashcards", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, limiter.calls)
}
