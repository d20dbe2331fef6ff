package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientAddr_DirectConnection(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.10:54321"

	assert.Equal(t, "203.0.113.10", ClientAddr(r, nil))
}

func TestClientAddr_IgnoresHeadersFromUntrustedPeer(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.10:54321"
	r.Header.Set("X-Forwarded-For", "198.51.100.7")
	r.Header.Set("X-Real-IP", "198.51.100.8")

	config := &ProxyConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	assert.Equal(t, "203.0.113.10", ClientAddr(r, config))
}

func TestClientAddr_ForwardedForFromTrustedProxy(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.5:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.5")

	config := &ProxyConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	assert.Equal(t, "198.51.100.7", ClientAddr(r, config))
}

func TestClientAddr_SkipsGarbageForwardedEntries(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.5:443"
	r.Header.Set("X-Forwarded-For", "not-an-ip, 198.51.100.7")

	config := &ProxyConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	assert.Equal(t, "198.51.100.7", ClientAddr(r, config))
}

func TestClientAddr_RealIPFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.5:443"
	r.Header.Set("X-Real-IP", "198.51.100.9")

	config := &ProxyConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	assert.Equal(t, "198.51.100.9", ClientAddr(r, config))
}

func TestClientAddr_MissingRemoteAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = ""

	assert.Equal(t, "unknown", ClientAddr(r, nil))
}
