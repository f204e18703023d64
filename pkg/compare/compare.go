// Package compare measures how similar two response bodies are.
//
// Similarity is the difflib ratio over word tokens: runs of letters and
// digits, plus every other non-space character on its own. Markup and
// paths therefore split into small tokens, so a page that differs only in
// an echoed path stays close to 1.0 even when it is minified.
package compare

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spaolacci/murmur3"
)

// MaxTokens bounds how many tokens of each body take part in a comparison.
// Longer bodies are sampled from both ends: the first half of the budget
// from the head and the rest from the tail.
const MaxTokens = 2048

// Fingerprint is a 64-bit murmur3 hash of a body.
func Fingerprint(body []byte) uint64 {
	return murmur3.Sum64(body)
}

// Ratio returns the similarity of a and b in [0,1].
func Ratio(a, b []byte) float64 {
	if bytes.Equal(a, b) {
		return 1
	}
	return matcher(a, b).Ratio()
}

// Below reports whether the similarity of a and b is below threshold.
// The cheap upper bounds are tried before the full ratio.
func Below(a, b []byte, threshold float64) bool {
	if bytes.Equal(a, b) {
		return 1 < threshold
	}
	m := matcher(a, b)
	if m.RealQuickRatio() < threshold {
		return true
	}
	if m.QuickRatio() < threshold {
		return true
	}
	return m.Ratio() < threshold
}

// AtLeast reports whether the similarity of a and b is at least threshold.
func AtLeast(a, b []byte, threshold float64) bool {
	return !Below(a, b, threshold)
}

func matcher(a, b []byte) *difflib.SequenceMatcher {
	// Autojunk would drop the repeated markup tokens that make up most of
	// an HTML page.
	return difflib.NewMatcherWithJunk(sample(Tokens(a)), sample(Tokens(b)), false, nil)
}

// Tokens splits body into word runs and single punctuation characters.
// Whitespace separates tokens and is dropped.
func Tokens(body []byte) []string {
	var (
		out   []string
		start = -1
	)
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRune(body[i:])
		switch {
		case isWord(r):
			if start < 0 {
				start = i
			}
		default:
			if start >= 0 {
				out = append(out, string(body[start:i]))
				start = -1
			}
			if !unicode.IsSpace(r) {
				out = append(out, string(body[i:i+size]))
			}
		}
		i += size
	}
	if start >= 0 {
		out = append(out, string(body[start:]))
	}
	return out
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// sample keeps the head and tail of long token streams so a change at
// either end of a large page still counts.
func sample(tokens []string) []string {
	if len(tokens) <= MaxTokens {
		return tokens
	}
	head := MaxTokens / 2
	tail := MaxTokens - head
	out := make([]string, 0, MaxTokens)
	out = append(out, tokens[:head]...)
	return append(out, tokens[len(tokens)-tail:]...)
}
