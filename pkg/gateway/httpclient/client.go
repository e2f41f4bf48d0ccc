package httpclient

import (
	"net"
	"net/http"
	"time"
)

type Option func(*http.Transport)

// WithLocalDir serves file:// URLs from dir, so the CSV loader can read a data
// directory through the same client it uses for HTTP.
func WithLocalDir(dir string) Option {
	return func(t *http.Transport) {
		if dir != "" {
			t.RegisterProtocol("file", http.NewFileTransport(http.Dir(dir)))
		}
	}
}

// New creates an HTTP client for fetching static data files. A zero timeout
// means requests wait as long as the context allows.
func New(timeout time.Duration, opts ...Option) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(transport)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
