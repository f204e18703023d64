// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.Shutdown)
//	cfg.Timeout = duration.HTTPScanning
//
// DO NOT use hardcoded time.Duration values like `30 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// HTTP CLIENT TIMEOUTS
// ============================================================================

const (
	// HTTPProbing is for calibration requests and quick checks (5s)
	HTTPProbing = 5 * time.Second

	// HTTPScanning is the default per-mutant timeout (15s)
	HTTPScanning = 15 * time.Second

	// HTTPFuzzing is for slow targets (30s)
	HTTPFuzzing = 30 * time.Second
)

// ============================================================================
// CONNECTION TIMEOUTS
// ============================================================================

const (
	// DialTimeout is for establishing TCP connections (10s)
	DialTimeout = 10 * time.Second

	// TLSHandshake is for the TLS handshake (10s)
	TLSHandshake = 10 * time.Second

	// IdleConn is how long idle connections stay pooled (90s)
	IdleConn = 90 * time.Second

	// KeepAlive is the TCP keep-alive period (30s)
	KeepAlive = 30 * time.Second
)

// ============================================================================
// CACHE & LIFECYCLE
// ============================================================================

const (
	// CacheMedium is how long a failed host stays marked (5min)
	CacheMedium = 5 * time.Minute

	// Shutdown bounds graceful shutdown of exporters and servers (5s)
	Shutdown = 5 * time.Second

	// ExporterConnect bounds exporter connection setup (10s)
	ExporterConnect = 10 * time.Second
)
