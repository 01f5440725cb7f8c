package ws

import (
	"errors"
	"net"
	"net/http"
	"strings"
)

var errInvalidToken = errors.New("invalid token")

// splitBearer extracts the raw token from a "Bearer <token>" header. Returns
// an empty string when the header does not fit.
func splitBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// clientIP resolves the connecting client's address, preferring the first
// forwarded hop when the broker sits behind a proxy.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
