package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{ErrProxyConfig, ErrTimeout, ErrDNS, ErrTLS, ErrConnection}
	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			if errors.Is(sentinels[i], sentinels[j]) {
				t.Errorf("sentinel %d and %d must be distinct", i, j)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"dns", &net.DNSError{Err: "no such host", Name: "x.invalid"}, ErrDNS},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrTimeout},
		{"net timeout", &net.OpError{Op: "read", Net: "tcp", Err: timeoutErr{}}, ErrTimeout},
		{"refused", refused, ErrConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("original error must stay reachable")
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) must be nil")
	}
}
