package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for HTTP client failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrProxyConfig indicates a malformed or unsupported proxy URL.
	ErrProxyConfig = errors.New("httpclient: invalid proxy")

	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("httpclient: request timed out")

	// ErrDNS indicates a DNS resolution failure for the target host.
	ErrDNS = errors.New("httpclient: DNS resolution failed")

	// ErrTLS indicates a TLS handshake or certificate verification failure.
	ErrTLS = errors.New("httpclient: TLS handshake failed")

	// ErrConnection covers every other transport failure.
	ErrConnection = errors.New("httpclient: connection failed")
)

// Classify wraps a transport error with the matching sentinel. The
// original error stays reachable through errors.Is and errors.As.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinelFor(err), err)
}

func sentinelFor(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrDNS
	}

	var (
		recordErr tls.RecordHeaderError
		verifyErr *tls.CertificateVerificationError
		unknownCA x509.UnknownAuthorityError
		hostErr   x509.HostnameError
		invalid   x509.CertificateInvalidError
	)
	if errors.As(err, &recordErr) || errors.As(err, &verifyErr) ||
		errors.As(err, &unknownCA) || errors.As(err, &hostErr) || errors.As(err, &invalid) {
		return ErrTLS
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrConnection
}
