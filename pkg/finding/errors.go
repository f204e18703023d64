package finding

import "errors"

// Sentinel errors returned by repositories.
// Callers should use errors.Is() to check for these.
var (
	// ErrInvalidFinding indicates a finding without a known kind, a valid
	// severity or a name.
	ErrInvalidFinding = errors.New("finding: invalid finding")

	// ErrRepositoryClosed indicates an append after Close.
	ErrRepositoryClosed = errors.New("finding: repository closed")
)
