package requests

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP is the caller address for access logs and throttling.
// Forwarding headers are honored only when trustProxy is set
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// Prefer X-Forwarded-For (first entry)
		if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
			first, _, _ := strings.Cut(xForwardedFor, ",")
			return strings.TrimSpace(first)
		}
		if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
			return strings.TrimSpace(xRealIP)
		}
	}
	hostIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return hostIP
}
