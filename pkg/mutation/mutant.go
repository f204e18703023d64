package mutation

import (
	"fmt"
	"strconv"
)

// LocusKind is the part of a request a mutant varies.
type LocusKind int

const (
	// LocusWholeURL replaces the entire target URL.
	LocusWholeURL LocusKind = iota
	// LocusQueryParam replaces one occurrence of a query parameter.
	LocusQueryParam
	// LocusPathFilename replaces the name portion of the last path segment.
	LocusPathFilename
)

// AnyParameter as a locus parameter name targets every declared query
// parameter occurrence of the seed.
const AnyParameter = "*"

func (k LocusKind) String() string {
	switch k {
	case LocusWholeURL:
		return "url"
	case LocusQueryParam:
		return "query"
	case LocusPathFilename:
		return "filename"
	default:
		return "LocusKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Locus identifies what a mutant changed.
type Locus struct {
	Kind  LocusKind
	Param string
	Index int
}

// WholeURL returns the whole-URL locus.
func WholeURL() Locus { return Locus{Kind: LocusWholeURL} }

// QueryParam returns the locus of one occurrence of a query parameter.
func QueryParam(name string, index int) Locus {
	return Locus{Kind: LocusQueryParam, Param: name, Index: index}
}

// AllParameters returns the locus covering every query parameter occurrence.
func AllParameters() Locus { return Locus{Kind: LocusQueryParam, Param: AnyParameter} }

// PathFilename returns the filename locus.
func PathFilename() Locus { return Locus{Kind: LocusPathFilename} }

func (l Locus) String() string {
	switch l.Kind {
	case LocusQueryParam:
		return fmt.Sprintf("%s[%d]", l.Param, l.Index)
	default:
		return l.Kind.String()
	}
}

// Mutant is a seed request with exactly one locus changed.
type Mutant struct {
	seed    Request
	request Request
	locus   Locus
	value   string
}

func newMutant(seed, req Request, locus Locus, value string) *Mutant {
	return &Mutant{seed: seed.Clone(), request: req, locus: locus, value: value}
}

// Seed returns the request the mutant was derived from.
func (m *Mutant) Seed() Request { return m.seed }

// Request returns the mutated request.
func (m *Mutant) Request() Request { return m.request }

// Locus returns where the mutant differs from its seed.
func (m *Mutant) Locus() Locus { return m.locus }

// Value returns the value placed at the locus.
func (m *Mutant) Value() string { return m.value }

// Variable names the mutated variable: the parameter name for query loci,
// "filename" or "url" otherwise.
func (m *Mutant) Variable() string {
	if m.locus.Kind == LocusQueryParam {
		return m.locus.Param
	}
	return m.locus.Kind.String()
}

// URL returns the mutated request URL as a string.
func (m *Mutant) URL() string { return m.request.String() }

// FoundAt describes where a finding on this mutant occurred.
func (m *Mutant) FoundAt() string {
	s := fmt.Sprintf("%q, using HTTP method %s.", m.URL(), m.request.Method())
	if m.locus.Kind == LocusQueryParam {
		s += fmt.Sprintf(" The modified parameter was %q.", m.locus.Param)
	}
	return s
}

func (m *Mutant) String() string {
	return m.request.Method() + " " + m.URL() + " [" + m.locus.String() + "=" + m.value + "]"
}
