package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the address of the calling client. When trustProxy is set
// the usual proxy headers are consulted first, in order: X-Forwarded-For,
// X-Real-IP, Forwarded. The peer address is the fallback.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := firstForwardedFor(r.Header.Get("X-Forwarded-For")); ip != "" {
			return ip
		}
		if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
		if ip := forwardedFor(r.Header.Get("Forwarded")); ip != "" {
			return ip
		}
	}
	return peerIP(r.RemoteAddr)
}

func firstForwardedFor(header string) string {
	if header == "" {
		return ""
	}
	first, _, _ := strings.Cut(header, ",")
	return parseIP(first)
}

// forwardedFor extracts the first for= node of an RFC 7239 Forwarded header.
func forwardedFor(header string) string {
	for _, element := range strings.Split(header, ",") {
		for _, pair := range strings.Split(element, ";") {
			key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok || !strings.EqualFold(key, "for") {
				continue
			}
			value = strings.Trim(value, `"`)
			if strings.HasPrefix(value, "[") {
				// [2001:db8::1]:4711
				if end := strings.Index(value, "]"); end > 0 {
					value = value[1:end]
				}
			} else if host, _, err := net.SplitHostPort(value); err == nil {
				value = host
			}
			if ip := parseIP(value); ip != "" {
				return ip
			}
		}
	}
	return ""
}

func peerIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	if ip := parseIP(host); ip != "" {
		return ip
	}
	return remoteAddr
}

func parseIP(raw string) string {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return ""
	}
	return ip.String()
}
