package provider

import (
	"net"
	"net/http"
	"time"
)

// defaultGenerateTimeout bounds a single generation call. Local models can
// be slow, so the default is generous; config can lower it.
const defaultGenerateTimeout = 300 * time.Second

// probeTimeout bounds availability checks, which must never hold up startup.
const probeTimeout = 5 * time.Second

// newHTTPClient returns an HTTP client with connection pooling shared across
// a provider's calls.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
