// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all runtime configuration defaults.
//
// Usage:
//
//	cfg.Concurrency = defaults.ConcurrencyMedium
//	cfg.MaxCandidates = defaults.MaxCandidates
//
// DO NOT use hardcoded values like `Concurrency: 10` anywhere.
// Instead, reference the appropriate constant from this package.
package defaults

// Version is the current mutaprobe version
const Version = "0.3.0"

// ToolName is used for user agents, tracer names and metric namespaces.
const ToolName = "mutaprobe"

// ============================================================================
// CONCURRENCY SETTINGS
// ============================================================================

const (
	// ConcurrencyMinimal is for single-threaded operations (1)
	ConcurrencyMinimal = 1

	// ConcurrencyLow is for light probing (5)
	ConcurrencyLow = 5

	// ConcurrencyMedium is for standard probing rounds (10)
	ConcurrencyMedium = 10

	// ConcurrencyMax is the upper bound accepted by configuration validation (200)
	ConcurrencyMax = 200
)

// ============================================================================
// PROBING SETTINGS
// ============================================================================

const (
	// MaxCandidates is how many related words the expander keeps per seed word.
	MaxCandidates = 5

	// SimilarityThreshold is the body similarity below which a response is
	// treated as different content from the baseline.
	SimilarityThreshold = 0.85

	// NotFoundSimilarity is the similarity at or above which a response is
	// considered the same page as a calibrated not-found response.
	NotFoundSimilarity = 0.90

	// RateLimit is the default request budget per second for a dispatcher.
	RateLimit = 100

	// HostMaxErrors is the failure threshold a host error cache uses when
	// none is given. Dispatchers only skip hosts when a threshold is set.
	HostMaxErrors = 5

	// DefaultExtension is assumed for filenames without an extension when
	// splitting name and extension.
	DefaultExtension = "html"
)

// TestURLs returns the built-in off-site redirect targets: one absolute URL
// and one protocol-relative variant.
func TestURLs() []string {
	return []string{
		"http://www.w3af.org/",
		"//w3af.org",
	}
}

// ============================================================================
// HTTP SETTINGS
// ============================================================================

const (
	// UserAgent is sent with every probe unless overridden.
	UserAgent = "Mozilla/5.0 (compatible; " + ToolName + "/" + Version + ")"

	// MaxRedirects bounds redirect following when a probe asks for it.
	MaxRedirects = 10
)
