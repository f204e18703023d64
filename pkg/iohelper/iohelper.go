// Package iohelper provides bounded reads of HTTP response bodies.
package iohelper

import (
	"io"
)

// Body size limits.
const (
	// SmallMaxBodySize is for calibration pages and error bodies (8KB)
	SmallMaxBodySize int64 = 8 * 1024

	// DefaultMaxBodySize is for probe responses (1MB)
	DefaultMaxBodySize int64 = 1024 * 1024
)

// ReadBody reads from r with a size limit.
// If r is nil, returns an empty slice and no error.
//
//	body, err := iohelper.ReadBody(resp.Body, iohelper.DefaultMaxBodySize)
//	defer iohelper.DrainAndClose(resp.Body)
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// DrainAndClose reads any remaining data from r and closes it if it's a
// ReadCloser so the connection can be reused. Always returns nil to allow
// use in defer.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}

	// Drain at most 64KB
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64*1024))

	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
