package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onejourney/onejourney/internal/api/middleware"
	"github.com/onejourney/onejourney/internal/api/models"
)

func limited(limit int, window time.Duration) http.Handler {
	return middleware.RequestID(middleware.RateLimitByIP(middleware.RateLimitConfig{
		RequestLimit: limit,
		WindowLength: window,
	})(okHandler()))
}

func hit(h http.Handler, ip, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, http.NoBody)
	req.RemoteAddr = ip
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIP_AllowsWithinLimitThenBlocks(t *testing.T) {
	h := limited(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234", "/api/optimize").Code, "request %d", i+1)
	}

	rec := hit(h, "10.0.0.1:1234", "/api/optimize")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRateLimitByIP_SeparateBudgetPerIP(t *testing.T) {
	h := limited(1, time.Minute)

	assert.Equal(t, http.StatusOK, hit(h, "172.16.0.1:1", "/api/ai").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "172.16.0.1:1", "/api/ai").Code)
	assert.Equal(t, http.StatusOK, hit(h, "172.16.0.2:1", "/api/ai").Code)
}

func TestRateLimitByIP_RetryAfterFollowsWindow(t *testing.T) {
	h := limited(1, 90*time.Second)

	hit(h, "198.51.100.7:4000", "/api/ai")
	rec := hit(h, "198.51.100.7:4000", "/api/ai")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "90", rec.Header().Get("Retry-After"))
}

func TestRateLimitByIP_ProblemBody(t *testing.T) {
	h := limited(1, time.Minute)

	hit(h, "203.0.113.1:1", "/api/wallet/use")
	rec := hit(h, "203.0.113.1:1", "/api/wallet/use")

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeTooManyRequests, problem.Type)
	assert.Equal(t, "/api/wallet/use", problem.Instance)
	assert.Contains(t, problem.Error, "Rate limit exceeded")
	assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), problem.TraceID)
}

func TestDefaultRateLimitConfigs(t *testing.T) {
	assert.Equal(t, middleware.RateLimitConfig{RequestLimit: 30, WindowLength: time.Minute}, middleware.ExpensiveRateLimit)
	assert.Equal(t, middleware.RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}, middleware.StandardRateLimit)
}
