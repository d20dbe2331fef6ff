package http

import (
	"net"
	"net/http"
	"strings"
)

// ProxyConfig lists CIDR ranges of proxies whose forwarding headers we trust.
type ProxyConfig struct {
	TrustedProxies []string
}

// ClientAddr resolves the client IP for a request. Forwarding headers
// (X-Forwarded-For, X-Real-IP) are honored only when the direct peer is a
// trusted proxy; otherwise they could be spoofed to dodge per-IP limits.
// Returns "unknown" when no address can be determined, so callers always
// have a usable bucket key.
func ClientAddr(r *http.Request, config *ProxyConfig) string {
	peer := peerAddr(r)

	if config != nil && fromTrustedProxy(peer, config.TrustedProxies) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// First parseable entry is the original client
			for _, part := range strings.Split(xff, ",") {
				candidate := strings.TrimSpace(part)
				if net.ParseIP(candidate) != nil {
					return candidate
				}
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if net.ParseIP(xri) != nil {
				return xri
			}
		}
	}

	return peer
}

func peerAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func fromTrustedProxy(addr string, trusted []string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, cidr := range trusted {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}
