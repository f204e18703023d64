// Package lexicon expands a seed word into related words for probing.
//
// The lexical database is an injected [Provider]; the package ships a
// YAML-backed [StaticProvider] and an embedded default sense graph so the
// CLI works without external data.
package lexicon

import "errors"

// ErrUnknownWord is returned by providers that distinguish "no senses"
// from an empty result. Expanders treat it like any other lookup failure.
var ErrUnknownWord = errors.New("lexicon: unknown word")

// Provider looks up the senses of a word. Implementations are shared
// across goroutines and must be safe for concurrent reads.
type Provider interface {
	SensesOf(word string) ([]Sense, error)
}

// Sense is one meaning of a word together with its relations.
type Sense interface {
	// Name is the sense label, e.g. "big_dog.n.01".
	Name() string
	Hypernyms() []Sense
	Hyponyms() []Sense
	MemberHolonyms() []Sense
	// PrimaryLemma may return nil when the sense has no lemmas.
	PrimaryLemma() Lemma
}

// Lemma is a surface form of a sense.
type Lemma interface {
	Name() string
	Antonyms() []Lemma
}
