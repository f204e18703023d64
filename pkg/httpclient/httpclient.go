// Package httpclient builds the HTTP transport used to send probes and
// the Sender that turns mutants into responses.
package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/waftester/mutaprobe/pkg/defaults"
	"github.com/waftester/mutaprobe/pkg/duration"
)

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the total request timeout (default: duration.HTTPScanning)
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification
	InsecureSkipVerify bool

	// Proxy is an http, https, socks5 or socks5h proxy URL (optional)
	Proxy string

	// MaxConnsPerHost is the maximum connections per host (default: 25)
	MaxConnsPerHost int

	// FollowRedirects makes the client follow up to defaults.MaxRedirects
	// redirects. Probes that classify redirects must leave it off.
	FollowRedirects bool
}

// DefaultConfig returns defaults for probing workloads.
func DefaultConfig() Config {
	return Config{
		Timeout:            duration.HTTPScanning,
		InsecureSkipVerify: true,
		MaxConnsPerHost:    25,
	}
}

// New creates an HTTP client. It fails only on a malformed proxy URL.
func New(cfg Config) (*http.Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.HTTPScanning
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 25
	}

	dialer := &net.Dialer{
		Timeout:   duration.DialTimeout,
		KeepAlive: duration.KeepAlive,
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxConnsPerHost * 4,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     duration.IdleConn,

		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		TLSHandshakeTimeout:   duration.TLSHandshake,

		DialContext: dialer.DialContext,

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // probing targets with self-signed certs
		},
	}

	if err := applyProxy(transport, cfg.Proxy); err != nil {
		return nil, err
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
	if cfg.FollowRedirects {
		return following(client), nil
	}
	return noRedirects(client), nil
}

// noRedirects returns a shallow copy of c that never follows redirects
// but shares its transport and connection pool.
func noRedirects(c *http.Client) *http.Client {
	cp := *c
	cp.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &cp
}

// following returns a shallow copy of c that follows redirects.
func following(c *http.Client) *http.Client {
	cp := *c
	cp.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= defaults.MaxRedirects {
			return fmt.Errorf("stopped after %d redirects", len(via))
		}
		return nil
	}
	return &cp
}
