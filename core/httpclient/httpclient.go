// Package httpclient builds the HTTP client shared by the source feed and the image feed.
//
// Transport level timeouts bound connection setup and time to first byte. The total
// deadline of a call is the caller's job: every request is created with a context that
// carries its own timeout.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// UserAgent is sent with every request.
const UserAgent = "mulligan-catalog-sync/1.0"

// New creates an HTTP client whose transport uses timeout for dial, TLS and response headers.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return &http.Client{
		Transport: &uaTransport{base: transport},
	}
}

type uaTransport struct {
	base http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	// Clone so the caller's request is not mutated.
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", UserAgent)
	return t.base.RoundTrip(r)
}
