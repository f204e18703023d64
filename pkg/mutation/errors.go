package mutation

import "errors"

// Sentinel errors for malformed loci. Callers should use errors.Is().
var (
	// ErrUnknownParameter indicates the seed does not declare the parameter.
	ErrUnknownParameter = errors.New("mutation: unknown parameter")

	// ErrLocusOutOfRange indicates an occurrence index outside the
	// values of a repeated parameter.
	ErrLocusOutOfRange = errors.New("mutation: occurrence index out of range")
)
