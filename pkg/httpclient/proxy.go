package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"
)

// supportedProxySchemes are the schemes accepted by ParseProxyURL.
var supportedProxySchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true, // DNS resolved by the proxy
}

// ParseProxyURL validates a proxy URL. A missing scheme means http.
// Returns nil, nil for an empty string.
func ParseProxyURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyConfig, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if !supportedProxySchemes[u.Scheme] {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrProxyConfig, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", ErrProxyConfig)
	}
	return u, nil
}

// applyProxy routes transport through raw. HTTP proxies use CONNECT via
// transport.Proxy; SOCKS proxies replace the dialer.
func applyProxy(transport *http.Transport, raw string) error {
	u, err := ParseProxyURL(raw)
	if err != nil || u == nil {
		return err
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return nil
	}

	socks := *u
	socks.Scheme = "socks5"
	dialer, err := proxy.FromURL(&socks, proxy.Direct)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProxyConfig, err)
	}
	cd, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return fmt.Errorf("%w: socks dialer lacks context support", ErrProxyConfig)
	}
	transport.Proxy = nil
	transport.DialContext = cd.DialContext
	return nil
}
