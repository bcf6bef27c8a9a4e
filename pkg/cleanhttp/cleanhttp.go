// Package cleanhttp builds http clients that share no state with
// http.DefaultClient or with each other.
package cleanhttp

import (
	"net"
	"net/http"
	"time"
)

// NewTransport returns a transport with the same settings as
// http.DefaultTransport, but without keep-alive connections shared across
// clients.
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// NewClient returns a client on its own NewTransport. The client has no
// overall timeout; bound requests with a context instead.
func NewClient() *http.Client {
	return &http.Client{
		Transport: NewTransport(),
	}
}
