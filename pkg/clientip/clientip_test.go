package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/robotwatch/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"remote addr without port", nil, "192.0.2.1", "192.0.2.1"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"cloudflare first", map[string]string{"CF-Connecting-IP": "203.0.113.9", "X-Forwarded-For": "198.51.100.1"}, "10.0.0.1:1", "203.0.113.9"},
		{"forwarded list first valid", map[string]string{"X-Forwarded-For": "junk, 198.51.100.7, 198.51.100.8"}, "10.0.0.1:1", "198.51.100.7"},
		{"invalid header falls through", map[string]string{"X-Real-IP": "999.0.0.1"}, "10.0.0.2:1", "10.0.0.2"},
		{"mapped ipv4 unmapped", map[string]string{"X-Real-IP": "::ffff:192.0.2.44"}, "10.0.0.1:1", "192.0.2.44"},
		{"zone dropped", map[string]string{"X-Real-IP": "fe80::1%eth0"}, "10.0.0.1:1", "fe80::1"},
		{"garbage remote", nil, "not-an-ip", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, clientip.GetIP(r))
		})
	}
}

func TestResolver_NoTrustedHeaders(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.1")

	assert.Equal(t, "192.0.2.10", clientip.New().IP(r))
}

func TestMiddleware(t *testing.T) {
	var got string
	h := clientip.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = clientip.FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1"
	r.Header.Set("X-Forwarded-For", "198.51.100.3")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "198.51.100.3", got)
	assert.Empty(t, clientip.FromContext(r.Context()))
}
