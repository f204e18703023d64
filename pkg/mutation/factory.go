package mutation

import (
	"fmt"
	"strings"

	"github.com/waftester/mutaprobe/pkg/defaults"
)

// ForQueryParameter returns one mutant per candidate with only the value at
// (name, occurrence) replaced. Other occurrences of a repeated name are kept.
func ForQueryParameter(seed Request, name string, occurrence int, candidates []string) ([]*Mutant, error) {
	values := seed.query.Get(name)
	if values == nil && seed.query.index(name) < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	if occurrence < 0 || occurrence >= len(values) {
		return nil, fmt.Errorf("%w: %q has %d occurrence(s), index %d",
			ErrLocusOutOfRange, name, len(values), occurrence)
	}
	locus := QueryParam(name, occurrence)
	out := make([]*Mutant, 0, len(candidates))
	for _, c := range candidates {
		req, err := seed.WithQueryValue(name, occurrence, c)
		if err != nil {
			return nil, err
		}
		out = append(out, newMutant(seed, req, locus, c))
	}
	return out, nil
}

// ForAllParameters returns, for every parameter occurrence of seed in
// declaration order, one mutant per value. A seed without query parameters
// yields no mutants.
func ForAllParameters(seed Request, values []string) []*Mutant {
	var out []*Mutant
	for _, p := range seed.query {
		for i := range p.Values {
			// Name and index come from seed itself, so this cannot fail.
			ms, _ := ForQueryParameter(seed, p.Name, i, values)
			out = append(out, ms...)
		}
	}
	return out
}

// SplitFilename splits filename into its replaceable name, the qualifiers
// between the name and the extension (including the leading dot), and the
// extension after the last dot. A filename without a dot reports
// defaults.DefaultExtension and hasExt=false.
//
//	report.v2.pdf -> "report", ".v2", "pdf", true
//	report        -> "report", "", "html", false
func SplitFilename(filename string) (name, middle, ext string, hasExt bool) {
	last := strings.LastIndexByte(filename, '.')
	if last < 0 {
		return filename, "", defaults.DefaultExtension, false
	}
	ext = filename[last+1:]
	stem := filename[:last]
	if first := strings.IndexByte(stem, '.'); first >= 0 {
		return stem[:first], stem[first:], ext, true
	}
	return stem, "", ext, true
}

// ForPathFilename returns one mutant per candidate with the name portion of
// the seed's filename replaced, keeping directory, qualifiers and extension.
// A seed whose path ends in a slash has no filename and yields no mutants.
func ForPathFilename(seed Request, candidates []string) []*Mutant {
	filename := seed.Filename()
	if filename == "" {
		return nil
	}
	name, middle, ext, hasExt := SplitFilename(filename)
	if name == "" {
		return nil
	}
	suffix := middle
	if hasExt {
		suffix += "." + ext
	}
	out := make([]*Mutant, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		req := seed.WithFilename(c + suffix)
		out = append(out, newMutant(seed, req, PathFilename(), c))
	}
	return out
}

// ForWholeURL returns one mutant per value aimed at that URL instead of the
// seed target. Protocol-relative values take the seed scheme. Values that do
// not parse into an absolute URL are skipped.
func ForWholeURL(seed Request, values []string) []*Mutant {
	out := make([]*Mutant, 0, len(values))
	for _, v := range values {
		target := v
		if strings.HasPrefix(target, "//") {
			target = seed.Scheme() + ":" + target
		}
		req, err := seed.WithURL(target)
		if err != nil {
			continue
		}
		out = append(out, newMutant(seed, req, WholeURL(), v))
	}
	return out
}

// ForFixedValues places a constant set of values at target. A query locus
// naming AnyParameter covers every declared parameter occurrence.
func ForFixedValues(seed Request, values []string, target Locus) ([]*Mutant, error) {
	switch target.Kind {
	case LocusWholeURL:
		return ForWholeURL(seed, values), nil
	case LocusPathFilename:
		return ForPathFilename(seed, values), nil
	case LocusQueryParam:
		if target.Param == AnyParameter {
			return ForAllParameters(seed, values), nil
		}
		return ForQueryParameter(seed, target.Param, target.Index, values)
	default:
		return nil, fmt.Errorf("mutation: unsupported locus kind %v", target.Kind)
	}
}
