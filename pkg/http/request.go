package http

import (
	"net"
	"net/http"
	"strings"
)

const (
	defaultClientIP  = "127.0.0.1"
	defaultUserAgent = "Unknown"
)

// ClientIP resolves the client address for scoring and rate limiting:
// the first entry of X-Forwarded-For when present, otherwise the peer
// address, falling back to 127.0.0.1 when neither resolves.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	if ip := remoteAddr(r); ip != "" {
		return ip
	}
	return defaultClientIP
}

// UserAgent returns the request's User-Agent header, or "Unknown"
func UserAgent(r *http.Request) string {
	if ua := r.Header.Get("User-Agent"); ua != "" {
		return ua
	}
	return defaultUserAgent
}

// remoteAddr extracts the IP from RemoteAddr, removing the port if present
func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return ""
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
