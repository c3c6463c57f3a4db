package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSConfig describes the cross-origin policy.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

// CORSMiddleware handles Cross-Origin Resource Sharing
type CORSMiddleware struct {
	allowedOrigins []string
	allowAll       bool
	methods        string
	headers        string
	maxAge         string
}

// NewCORSMiddleware creates a new CORS middleware
func NewCORSMiddleware(cfg CORSConfig) *CORSMiddleware {
	allowAll := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}

	return &CORSMiddleware{
		allowedOrigins: cfg.AllowedOrigins,
		allowAll:       allowAll,
		methods:        strings.Join(cfg.AllowedMethods, ", "),
		headers:        strings.Join(cfg.AllowedHeaders, ", "),
		maxAge:         strconv.Itoa(int(cfg.MaxAge / time.Second)),
	}
}

// Handler returns the CORS middleware handler. Headers are set before the
// next handler runs so every response, errors included, carries them.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if m.allowAll || m.isOriginAllowed(origin) {
			h := w.Header()
			if m.allowAll {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", m.methods)
			if m.headers == "*" {
				if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
					h.Set("Access-Control-Allow-Headers", requested)
				} else {
					h.Set("Access-Control-Allow-Headers", "*")
				}
			} else {
				h.Set("Access-Control-Allow-Headers", m.headers)
			}
			h.Set("Access-Control-Expose-Headers", exposedHeaders)
			h.Set("Access-Control-Max-Age", m.maxAge)
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

const exposedHeaders = "X-Trace-ID, X-Ratelimit-Limit, X-Ratelimit-Remaining, X-Ratelimit-After, Retry-After"

func (m *CORSMiddleware) isOriginAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range m.allowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}
