package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scoutchat/scout/internal/log"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter(1.0, 3)

	// Burst of 3 allowed, then exhausted.
	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, rl.allow("10.0.0.1"))

	// Independent bucket per IP.
	assert.True(t, rl.allow("10.0.0.2"))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := newRateLimiter(0.001, 2)
	handler := rateLimitMiddleware(rl, false, log.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xRealIP    string
		xff        string
		trustProxy bool
		want       string
	}{
		{name: "remote addr only", remoteAddr: "10.0.0.1:1234", want: "10.0.0.1"},
		{name: "proxy headers ignored when untrusted", remoteAddr: "10.0.0.1:1234", xRealIP: "1.2.3.4", want: "10.0.0.1"},
		{name: "x-real-ip trusted", remoteAddr: "10.0.0.1:1234", xRealIP: "1.2.3.4", trustProxy: true, want: "1.2.3.4"},
		{name: "x-forwarded-for first hop", remoteAddr: "10.0.0.1:1234", xff: "1.2.3.4, 5.6.7.8", trustProxy: true, want: "1.2.3.4"},
		{name: "invalid header falls back", remoteAddr: "10.0.0.1:1234", xRealIP: "not-an-ip", trustProxy: true, want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xRealIP != "" {
				r.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}

			assert.Equal(t, tt.want, clientIP(r, tt.trustProxy))
		})
	}
}
