package rates

import (
	"crypto/tls"
	"net/http"
	"time"
)

// NewHTTPClient creates the client used for feed requests. A zero timeout
// leaves requests unbounded; callers wanting bounded latency set one.
// skipTLSVerify exists for corporate proxies that re-sign TLS traffic.
func NewHTTPClient(timeout time.Duration, skipTLSVerify bool) *http.Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}

	if skipTLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// DefaultHTTPClient returns a client with a 30s timeout.
func DefaultHTTPClient() *http.Client {
	return NewHTTPClient(30*time.Second, false)
}
