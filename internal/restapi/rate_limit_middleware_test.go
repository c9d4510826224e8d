package restapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shuttle.campusbus.org/internal/clock"
	"shuttle.campusbus.org/internal/models"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/live/sn.json", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimitMiddleware(2, time.Second, clock.NewMockClock(wednesdayMorning))
	defer rl.Stop()
	handler := rl.Handler()(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("10.0.0.1:5000"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.1:5001"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body models.ResponseModel
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, http.StatusTooManyRequests, body.Code)
	assert.Equal(t, wednesdayMorning.UnixMilli(), body.CurrentTime)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("10.0.0.2:5000"))
	assert.Equal(t, http.StatusOK, rec.Code, "other clients have their own budget")
}

func TestRateLimitZeroAndUnlimited(t *testing.T) {
	blocked := NewRateLimitMiddleware(0, time.Second, nil)
	defer blocked.Stop()
	rec := httptest.NewRecorder()
	blocked.Handler()(okHandler()).ServeHTTP(rec, requestFrom("10.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))

	open := NewRateLimitMiddleware(-1, time.Second, nil)
	defer open.Stop()
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		open.Handler()(okHandler()).ServeHTTP(rec, requestFrom("10.0.0.1:1"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientKey(t *testing.T) {
	rl := NewRateLimitMiddleware(5, time.Second, nil)
	defer rl.Stop()

	req := requestFrom("192.0.2.7:4242")
	assert.Equal(t, "192.0.2.7", rl.clientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "192.0.2.7", rl.clientKey(req), "forwarded header from an untrusted peer is ignored")

	req = requestFrom("not-an-address")
	assert.Equal(t, "not-an-address", rl.clientKey(req))
}

func TestClientKeyBehindTrustedProxy(t *testing.T) {
	rl := NewRateLimitMiddleware(5, time.Second, nil)
	defer rl.Stop()
	rl.SetTrustedProxies([]string{"10.0.0.0/8", "192.0.2.1", "bogus"})

	req := requestFrom("10.1.2.3:4242")
	assert.Equal(t, "10.1.2.3", rl.clientKey(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.4, 203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", rl.clientKey(req), "the spoofable leftmost hop is not used")

	req.Header.Set("X-Forwarded-For", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", rl.clientKey(req))

	req = requestFrom("192.0.2.1:80")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", rl.clientKey(req))
}

func TestSpoofedForwardedForSharesOneLimiter(t *testing.T) {
	rl := NewRateLimitMiddleware(1, time.Hour, nil)
	defer rl.Stop()
	h := rl.Handler()(okHandler())

	codes := make([]int, 0, 3)
	for i := range 3 {
		req := requestFrom("192.0.2.7:4242")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.Len(t, rl.limiters, 1)
}

func TestRateLimitCleanupEvictsIdleClients(t *testing.T) {
	mock := clock.NewMockClock(wednesdayMorning)
	rl := NewRateLimitMiddleware(5, time.Second, mock)
	defer rl.Stop()

	rl.getLimiter("idle")
	mock.Advance(5 * time.Minute)
	rl.getLimiter("busy")
	mock.Advance(6 * time.Minute)
	rl.cleanupOnce()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.NotContains(t, rl.limiters, "idle")
	assert.Contains(t, rl.limiters, "busy")
}
