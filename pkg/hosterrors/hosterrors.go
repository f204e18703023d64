// Package hosterrors tracks consecutive transport failures per host so a
// probing round can stop sending to a host that is clearly down.
//
// A Cache is owned by one dispatcher; it is not shared between rounds.
//
//	if cache.Check(req.Host()) {
//	    // skip, host already failed too often
//	}
//	if err := send(); hosterrors.IsNetworkError(err) {
//	    cache.MarkError(req.Host())
//	} else if err == nil {
//	    cache.MarkSuccess(req.Host())
//	}
package hosterrors

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/waftester/mutaprobe/pkg/defaults"
	"github.com/waftester/mutaprobe/pkg/duration"
)

// DefaultExpiry is how long a failed host stays skipped.
var DefaultExpiry = duration.CacheMedium

// hostState tracks the error count and when the threshold was reached.
type hostState struct {
	count    int
	markedAt time.Time
}

// Cache stores consecutive failure counts per host.
type Cache struct {
	mu        sync.Mutex
	hosts     map[string]*hostState
	maxErrors int
	expiry    time.Duration
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewCache creates a cache. Non-positive arguments take the defaults.
func NewCache(maxErrors int, expiry time.Duration) *Cache {
	if maxErrors <= 0 {
		maxErrors = defaults.HostMaxErrors
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Cache{
		hosts:     make(map[string]*hostState),
		maxErrors: maxErrors,
		expiry:    expiry,
	}
}

// MarkError records a failure for host. Returns true once the host has
// reached the threshold.
func (c *Cache) MarkError(host string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.hosts[host]
	if !ok {
		state = &hostState{}
		c.hosts[host] = state
	}
	if c.expired(state) {
		*state = hostState{}
	}

	state.count++
	if state.count >= c.maxErrors {
		if state.markedAt.IsZero() {
			state.markedAt = time.Now()
		}
		return true
	}
	return false
}

// MarkSuccess resets the consecutive failure count for host.
func (c *Cache) MarkSuccess(host string) {
	host = normalizeHost(host)
	if host == "" {
		return
	}
	c.mu.Lock()
	delete(c.hosts, host)
	c.mu.Unlock()
}

// Check returns true if host should be skipped.
func (c *Cache) Check(host string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.hosts[host]
	if !ok || state.count < c.maxErrors {
		c.misses.Add(1)
		return false
	}
	if c.expired(state) {
		delete(c.hosts, host)
		c.misses.Add(1)
		return false
	}
	c.hits.Add(1)
	return true
}

func (c *Cache) expired(s *hostState) bool {
	return !s.markedAt.IsZero() && time.Since(s.markedAt) > c.expiry
}

// Size returns the number of hosts with at least one recorded failure.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hosts)
}

// Stats returns how many Check calls skipped and passed a host.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// normalizeHost extracts and lowercases the host from a URL or host:port.
func normalizeHost(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	if strings.Contains(input, "://") {
		if u, err := url.Parse(input); err == nil && u.Host != "" {
			input = u.Host
		}
	}

	host, _, err := net.SplitHostPort(input)
	if err != nil {
		host = input
	}

	return strings.ToLower(host)
}

// IsNetworkError returns true if err indicates the host may be unreachable.
// Cancellation of the caller's own context is not a host failure.
func IsNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	networkIndicators := []string{
		"connection refused",
		"no such host",
		"no route to host",
		"network is unreachable",
		"i/o timeout",
		"tls handshake timeout",
		"connection reset",
		"eof",
	}

	for _, indicator := range networkIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}
