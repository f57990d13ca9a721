package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_AllowsThenBlocks(t *testing.T) {
	h := RateLimit(60, 2)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "1.2.3.4:1234"

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, "request %d", i)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	time.Sleep(1100 * time.Millisecond)
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, req)
	assert.Equal(t, http.StatusOK, rr2.Code, "token refilled after a second")
}

func TestRateLimit_PerClient(t *testing.T) {
	h := RateLimit(60, 1)(okHandler())

	a := httptest.NewRequest(http.MethodGet, "/", nil)
	a.RemoteAddr = "1.2.3.4:1234"
	b := httptest.NewRequest(http.MethodGet, "/", nil)
	b.RemoteAddr = "5.6.7.8:1234"

	for _, req := range []*http.Request{a, b} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, a)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(0, 0)(okHandler())
	for i := 0; i < 10; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestLimiter_ForgetsIdleClients(t *testing.T) {
	l := newLimiter(1, 1, time.Millisecond)
	l.allow("a")
	time.Sleep(5 * time.Millisecond)
	l.allow("b")

	l.mu.Lock()
	defer l.mu.Unlock()
	_, stillThere := l.visitors["a"]
	assert.False(t, stillThere)
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	h := RateLimit(60, 1)(okHandler())

	for i, xff := range []string{"5.6.7.8", "9.9.9.9"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if i == 0 {
			assert.Equal(t, http.StatusOK, rr.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rr.Code, "rotating X-Forwarded-For must not reset the bucket")
		}
	}
}

func TestRateLimit_TrustedProxyForwardsClient(t *testing.T) {
	h := RateLimit(60, 1, "10.0.0.0/8")(okHandler())

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:4321"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("5.6.7.8"))
	assert.Equal(t, http.StatusOK, send("9.9.9.9"), "distinct clients behind the proxy")
	assert.Equal(t, http.StatusTooManyRequests, send("1.1.1.1, 5.6.7.8"), "spoofed left-most hop is ignored")
}

func TestClientIP(t *testing.T) {
	proxies := parseProxies([]string{"10.0.0.1", "192.168.0.0/16", "bogus"})
	assert.Len(t, proxies, 2)

	cases := []struct {
		remote, xff, want string
	}{
		{"1.2.3.4:1", "5.6.7.8", "1.2.3.4"},
		{"10.0.0.1:1", "5.6.7.8", "5.6.7.8"},
		{"10.0.0.1:1", "5.6.7.8, 192.168.1.1", "5.6.7.8"},
		{"10.0.0.1:1", "", "10.0.0.1"},
		{"10.0.0.2:1", "5.6.7.8", "10.0.0.2"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = c.remote
		if c.xff != "" {
			req.Header.Set("X-Forwarded-For", c.xff)
		}
		assert.Equal(t, c.want, clientIP(req, proxies), "remote %s xff %q", c.remote, c.xff)
	}
}
