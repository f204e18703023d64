package lexicon

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSense struct {
	name      string
	hypernyms []Sense
	hyponyms  []Sense
	holonyms  []Sense
	lemma     Lemma
	panicHypo bool
}

func (s *fakeSense) Name() string { return s.name }
func (s *fakeSense) Hypernyms() []Sense {
	return s.hypernyms
}
func (s *fakeSense) Hyponyms() []Sense {
	if s.panicHypo {
		panic("corrupt relation table")
	}
	return s.hyponyms
}
func (s *fakeSense) MemberHolonyms() []Sense { return s.holonyms }
func (s *fakeSense) PrimaryLemma() Lemma     { return s.lemma }

type fakeLemma struct {
	name     string
	antonyms []Lemma
}

func (l fakeLemma) Name() string      { return l.name }
func (l fakeLemma) Antonyms() []Lemma { return l.antonyms }

type fakeProvider struct {
	senses map[string][]Sense
	err    error
	calls  int
	mu     sync.Mutex
}

func (p *fakeProvider) SensesOf(word string) ([]Sense, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.senses[word], nil
}

func quietExpander(p Provider) *Expander {
	return NewExpander(p, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func sense(name string) *fakeSense { return &fakeSense{name: name} }

func TestExpand_RejectsEmptyAndNumericWords(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{senses: map[string][]Sense{"123": {sense("one.n.01")}}}
	e := quietExpander(p)

	for _, w := range []string{"", "123", "0042"} {
		assert.Empty(t, e.Expand(w, 5), "word %q", w)
	}
	assert.Zero(t, p.calls, "provider must not be queried for rejected words")
}

func TestExpand_CollectsAllRelations(t *testing.T) {
	t.Parallel()
	color := sense("chromatic_color.n.01")
	blue := &fakeSense{
		name:      "blue.n.01",
		hypernyms: []Sense{color},
		hyponyms:  []Sense{sense("navy_blue.n.01")},
		holonyms:  []Sense{sense("palette.n.02")},
		lemma:     fakeLemma{name: "blue", antonyms: []Lemma{fakeLemma{name: "orange"}}},
	}
	color.hyponyms = []Sense{blue, sense("red.n.01")}

	e := quietExpander(&fakeProvider{senses: map[string][]Sense{"blue": {blue}}})
	got := e.Expand("blue", 10)

	assert.ElementsMatch(t,
		[]string{"red", "chromatic color", "navy blue", "palette", "orange"},
		got)
}

func TestExpand_RanksByLengthKeepingFirstSeenOrder(t *testing.T) {
	t.Parallel()
	root := &fakeSense{
		name:     "seed.n.01",
		hyponyms: []Sense{sense("ccc.n.01"), sense("bb.n.01"), sense("aa.n.01"), sense("d.n.01")},
	}
	e := quietExpander(&fakeProvider{senses: map[string][]Sense{"seed": {root}}})

	assert.Equal(t, []string{"d", "bb", "aa", "ccc"}, e.Expand("seed", 10))
}

func TestExpand_NeverReturnsSeedOrDuplicates(t *testing.T) {
	t.Parallel()
	self := &fakeSense{name: "blue.n.01"}
	self.hypernyms = []Sense{self}
	self.hyponyms = []Sense{self, sense("red.n.01"), sense("red.n.02"), sense("Red.n.01")}
	self.lemma = fakeLemma{name: "blue", antonyms: []Lemma{fakeLemma{name: "blue"}, fakeLemma{name: "red"}}}
	second := &fakeSense{name: "blue.a.01", hyponyms: []Sense{sense("red.n.03")}}

	e := quietExpander(&fakeProvider{senses: map[string][]Sense{"blue": {self, second}}})
	got := e.Expand("blue", 10)

	assert.NotContains(t, got, "blue")
	assert.Equal(t, []string{"red", "Red"}, got, "identity is case-sensitive")
}

func TestExpand_TruncatesToMaxResults(t *testing.T) {
	t.Parallel()
	root := &fakeSense{name: "root.n.01"}
	for i := 0; i < 500; i++ {
		root.hyponyms = append(root.hyponyms, sense(fmt.Sprintf("word%d.n.01", i)))
	}
	e := quietExpander(&fakeProvider{senses: map[string][]Sense{"root": {root}}})

	got := e.Expand("root", 5)
	assert.Len(t, got, 5)
	assert.Equal(t, []string{"word0", "word1", "word2", "word3", "word4"}, got)
	assert.Empty(t, e.Expand("root", 0))
}

func TestExpand_SiblingsOfFirstSenseOnly(t *testing.T) {
	t.Parallel()
	parentA := &fakeSense{name: "parent_a.n.01", hyponyms: []Sense{sense("sibling.n.01")}}
	parentB := &fakeSense{name: "parent_b.n.01", hyponyms: []Sense{sense("cousin.n.01")}}
	first := &fakeSense{name: "word.n.01", hypernyms: []Sense{parentA}}
	second := &fakeSense{name: "word.v.01", hypernyms: []Sense{parentB}}

	e := quietExpander(&fakeProvider{senses: map[string][]Sense{"word": {first, second}}})
	got := e.Expand("word", 10)

	assert.Contains(t, got, "sibling")
	assert.NotContains(t, got, "cousin", "siblings come from the first sense only")
	assert.Contains(t, got, "parent b")
}

func TestExpand_SiblingFailureIsIgnored(t *testing.T) {
	t.Parallel()
	broken := &fakeSense{name: "parent.n.01", panicHypo: true}
	first := &fakeSense{
		name:      "word.n.01",
		hypernyms: []Sense{broken},
		holonyms:  []Sense{sense("whole.n.01")},
	}
	e := quietExpander(&fakeProvider{senses: map[string][]Sense{"word": {first}}})

	var got []string
	require.NotPanics(t, func() { got = e.Expand("word", 10) })
	assert.Equal(t, []string{"whole", "parent"}, got)
}

func TestExpand_NoHypernymForSiblings(t *testing.T) {
	t.Parallel()
	lonely := &fakeSense{name: "lonely.n.01", hyponyms: []Sense{sense("alone.n.01")}}
	e := quietExpander(&fakeProvider{senses: map[string][]Sense{"lonely": {lonely}}})
	assert.Equal(t, []string{"alone"}, e.Expand("lonely", 5))
}

func TestExpand_ProviderErrorYieldsNothing(t *testing.T) {
	t.Parallel()
	e := quietExpander(&fakeProvider{err: errors.New("database offline")})
	assert.Empty(t, e.Expand("blue", 5))
}

func TestExpand_NilProvider(t *testing.T) {
	t.Parallel()
	assert.Empty(t, NewExpander(nil).Expand("blue", 5))
}

func TestExpand_ConcurrentCalls(t *testing.T) {
	t.Parallel()
	p, err := DefaultProvider()
	require.NoError(t, err)
	e := quietExpander(p)

	words := []string{"blue", "report", "user", "white", "page", "big"}
	var wg sync.WaitGroup
	results := make([][]string, len(words)*10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Expand(words[i%len(words)], 5)
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		assert.Equal(t, e.Expand(words[i%len(words)], 5), r)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"dog.n.01", "dog"},
		{"big_dog.n.01", "big dog"},
		{"white", "white"},
		{"navy_blue", "navy blue"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
