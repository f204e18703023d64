// Package finding holds the verdicts produced by probing rounds.
//
// A round records every classifier hit in a local [Sink]. Duplicates are
// allowed on insertion; at the end of the round the owner asks for
// [Sink.UniqueBy] and appends the result to a shared [Repository].
//
// Usage:
//
//	var sink finding.Sink
//	sink.Add(f)
//	for _, f := range sink.UniqueBy(finding.ByVariable) {
//	    repo.Append("global_redirect", "global_redirect", f)
//	}
package finding
