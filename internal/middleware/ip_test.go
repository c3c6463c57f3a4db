package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		want       string
	}{
		{"remote addr", nil, "192.0.2.1:1234", true, "192.0.2.1"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:1234", true, "2001:db8::1"},
		{"x-forwarded-for first hop", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:1", true, "203.0.113.7"},
		{"x-real-ip", map[string]string{"X-Real-IP": "203.0.113.8"}, "10.0.0.1:1", true, "203.0.113.8"},
		{"forwarded", map[string]string{"Forwarded": `for="[2001:db8::2]:4711";proto=https`}, "10.0.0.1:1", true, "2001:db8::2"},
		{"forwarded ipv4 with port", map[string]string{"Forwarded": "for=198.51.100.3:80, for=10.0.0.1"}, "10.0.0.1:1", true, "198.51.100.3"},
		{"garbage header falls through", map[string]string{"X-Forwarded-For": "unknown"}, "192.0.2.9:1", true, "192.0.2.9"},
		{"headers ignored when untrusted", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "192.0.2.1:1234", false, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
