package lexicon

import (
	"log/slog"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Expander produces ranked candidate words from a Provider.
type Expander struct {
	provider Provider
	logger   *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithLogger sets a custom structured logger for the expander.
func WithLogger(l *slog.Logger) Option {
	return func(e *Expander) { e.logger = l }
}

// NewExpander creates an expander over provider.
func NewExpander(provider Provider, opts ...Option) *Expander {
	e := &Expander{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns at most maxResults words related to word, shortest first.
// The result never contains word itself and never contains duplicates.
// Empty and all-digit words, and provider failures, yield no candidates.
func (e *Expander) Expand(word string, maxResults int) []string {
	if word == "" || isDigits(word) || maxResults <= 0 || e.provider == nil {
		return nil
	}

	senses, err := e.provider.SensesOf(word)
	if err != nil {
		e.logger.Debug("lexicon: lookup failed",
			slog.String("word", word),
			slog.String("error", err.Error()))
		return nil
	}

	var labels []string
	labels = append(labels, e.siblings(word, senses)...)

	for _, s := range senses {
		labels = append(labels, s.Name())
		labels = appendNames(labels, s.Hypernyms())
		labels = appendNames(labels, s.Hyponyms())
		labels = appendNames(labels, s.MemberHolonyms())
		if lemma := s.PrimaryLemma(); lemma != nil {
			for _, ant := range lemma.Antonyms() {
				labels = append(labels, ant.Name())
			}
		}
	}

	return rank(word, labels, maxResults)
}

// siblings returns the hyponyms of the first hypernym of the first sense.
// The traversal is optional: any failure inside it, including a panicking
// provider, drops the siblings and nothing else.
func (e *Expander) siblings(word string, senses []Sense) (labels []string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("lexicon: sibling traversal skipped",
				slog.String("word", word),
				slog.Any("panic", r))
			labels = nil
		}
	}()

	if len(senses) == 0 {
		return nil
	}
	hypernyms := senses[0].Hypernyms()
	if len(hypernyms) == 0 {
		return nil
	}
	return appendNames(nil, hypernyms[0].Hyponyms())
}

func appendNames(dst []string, senses []Sense) []string {
	for _, s := range senses {
		dst = append(dst, s.Name())
	}
	return dst
}

// rank normalizes labels, removes duplicates and the seed word, and orders
// the rest by length. Ties keep first-seen order.
func rank(word string, labels []string, maxResults int) []string {
	seen := make(map[string]struct{}, len(labels))
	words := make([]string, 0, len(labels))
	for _, l := range labels {
		w := Normalize(l)
		if w == "" || w == word {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}

	sort.SliceStable(words, func(i, j int) bool {
		return utf8.RuneCountInString(words[i]) < utf8.RuneCountInString(words[j])
	})

	if len(words) > maxResults {
		words = words[:maxResults]
	}
	return words
}

// Normalize turns a sense or lemma label into a surface word:
// "big_dog.n.01" becomes "big dog".
func Normalize(label string) string {
	if i := strings.IndexByte(label, '.'); i >= 0 {
		label = label[:i]
	}
	return strings.ReplaceAll(label, "_", " ")
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
