package mockapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name           string
		remoteAddr     string
		xForwardedFor  string
		xRealIP        string
		trustedProxies []string
		expectedIP     string
	}{
		{
			name:       "Direct connection",
			remoteAddr: "192.168.1.100:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:          "Forwarded header ignored without trusted proxies",
			remoteAddr:    "10.0.0.1:8080",
			xForwardedFor: "203.0.113.45",
			expectedIP:    "10.0.0.1",
		},
		{
			name:           "Forwarded header from trusted proxy",
			remoteAddr:     "10.0.0.1:8080",
			xForwardedFor:  " 203.0.113.45 , 198.51.100.20 ",
			trustedProxies: []string{"10.0.0.1"},
			expectedIP:     "203.0.113.45",
		},
		{
			name:           "X-Real-IP from trusted proxy",
			remoteAddr:     "10.0.0.1:8080",
			xRealIP:        "203.0.113.45",
			trustedProxies: []string{"10.0.0.1"},
			expectedIP:     "203.0.113.45",
		},
		{
			name:           "Untrusted proxy cannot spoof",
			remoteAddr:     "99.99.99.99:8080",
			xForwardedFor:  "203.0.113.45",
			trustedProxies: []string{"10.0.0.1"},
			expectedIP:     "99.99.99.99",
		},
		{
			name:           "Invalid forwarded value falls back to RemoteAddr",
			remoteAddr:     "10.0.0.1:8080",
			xForwardedFor:  "not-an-ip",
			trustedProxies: []string{"10.0.0.1"},
			expectedIP:     "10.0.0.1",
		},
		{
			name:           "IPv6 peer",
			remoteAddr:     "[2001:db8::1]:443",
			xForwardedFor:  "203.0.113.45",
			trustedProxies: []string{"10.0.0.1"},
			expectedIP:     "2001:db8::1",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "192.168.1.100",
			expectedIP: "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwardedFor)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			assert.Equal(t, tt.expectedIP, clientIP(req, tt.trustedProxies))
		})
	}
}

func TestRateLimiter_BurstPerClient(t *testing.T) {
	rl := NewRateLimiter(t.Context(), 0.5, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	ok, wait := rl.Reserve("a")
	assert.False(t, ok, "burst exhausted")
	assert.Equal(t, 2*time.Second, wait, "one token every two seconds")
	assert.True(t, rl.Allow("b"), "clients have separate buckets")
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(t.Context(), 1, 1)
	rl.Allow("old")

	rl.evictIdle(time.Now().Add(time.Minute))
	assert.Equal(t, 1, rl.Len(), "recently seen bucket kept")

	rl.evictIdle(time.Now().Add(bucketIdleTTL + time.Second))
	assert.Zero(t, rl.Len())
}

func TestRateLimit_Returns429(t *testing.T) {
	srv := NewServer(t.Context(), Options{RateLimit: config.RateLimiterConfig{Enabled: true, RPS: 0.001, Burst: 1}})
	defer srv.Stop()
	h := srv.Routes()

	call := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/civilites", nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, call().Code)
	limited := call()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1000", limited.Header().Get("Retry-After"), "1/rps seconds")
	assert.Contains(t, limited.Body.String(), "rate_limit_exceeded")
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"45s", "45s"},
		{"2h15m30s", "2h 15m"},
		{"29h23m", "1d 5h"},
		{"0s", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := time.ParseDuration(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, formatUptime(d))
		})
	}
}
