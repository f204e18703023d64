package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/waftester/mutaprobe/pkg/jsonutil"
)

//go:embed data/default.yaml
var defaultGraph []byte

// SenseSpec is the file form of one sense.
type SenseSpec struct {
	ID             string   `yaml:"id" json:"id"`
	Lemmas         []string `yaml:"lemmas" json:"lemmas"`
	Hypernyms      []string `yaml:"hypernyms,omitempty" json:"hypernyms,omitempty"`
	Hyponyms       []string `yaml:"hyponyms,omitempty" json:"hyponyms,omitempty"`
	MemberHolonyms []string `yaml:"member_holonyms,omitempty" json:"member_holonyms,omitempty"`
	// Antonyms lists lemma names opposed to the primary lemma.
	Antonyms []string `yaml:"antonyms,omitempty" json:"antonyms,omitempty"`
}

// Graph is the document accepted by LoadProvider.
type Graph struct {
	Senses []SenseSpec `yaml:"senses" json:"senses"`
}

// StaticProvider serves a fixed, in-memory sense graph. It is read-only
// after construction.
type StaticProvider struct {
	byID   map[string]*staticSense
	byWord map[string][]*staticSense
}

var _ Provider = (*StaticProvider)(nil)

var (
	defaultProvider     *StaticProvider
	defaultProviderErr  error
	defaultProviderOnce sync.Once
)

// DefaultProvider returns the provider built from the embedded graph.
func DefaultProvider() (*StaticProvider, error) {
	defaultProviderOnce.Do(func() {
		defaultProvider, defaultProviderErr = ParseProvider(defaultGraph)
	})
	return defaultProvider, defaultProviderErr
}

// LoadProvider reads a sense graph from path. Files ending in .json are
// parsed as JSON, everything else as YAML.
func LoadProvider(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: read %s: %w", path, err)
	}
	parse := ParseProvider
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parse = parseJSONProvider
	}
	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %s: %w", path, err)
	}
	return p, nil
}

// ParseProvider builds a provider from a YAML sense graph.
func ParseProvider(data []byte) (*StaticProvider, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse sense graph: %w", err)
	}
	return NewStaticProvider(g)
}

func parseJSONProvider(data []byte) (*StaticProvider, error) {
	var g Graph
	if err := jsonutil.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse sense graph: %w", err)
	}
	return NewStaticProvider(g)
}

// NewStaticProvider indexes g. Relations must reference declared sense ids.
func NewStaticProvider(g Graph) (*StaticProvider, error) {
	p := &StaticProvider{
		byID:   make(map[string]*staticSense, len(g.Senses)),
		byWord: make(map[string][]*staticSense),
	}

	for i := range g.Senses {
		spec := g.Senses[i]
		if spec.ID == "" {
			return nil, fmt.Errorf("sense %d has no id", i)
		}
		if _, dup := p.byID[spec.ID]; dup {
			return nil, fmt.Errorf("duplicate sense id %q", spec.ID)
		}
		s := &staticSense{spec: spec, p: p}
		p.byID[spec.ID] = s
		for _, l := range spec.Lemmas {
			key := lookupKey(l)
			p.byWord[key] = append(p.byWord[key], s)
		}
	}

	for _, s := range p.byID {
		for _, rel := range [][]string{s.spec.Hypernyms, s.spec.Hyponyms, s.spec.MemberHolonyms} {
			for _, id := range rel {
				if _, ok := p.byID[id]; !ok {
					return nil, fmt.Errorf("sense %q references unknown sense %q", s.spec.ID, id)
				}
			}
		}
	}
	return p, nil
}

// SensesOf returns the senses having word as a lemma, in declaration order.
func (p *StaticProvider) SensesOf(word string) ([]Sense, error) {
	found := p.byWord[lookupKey(word)]
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWord, word)
	}
	out := make([]Sense, len(found))
	for i, s := range found {
		out[i] = s
	}
	return out, nil
}

// Len returns the number of senses in the graph.
func (p *StaticProvider) Len() int {
	return len(p.byID)
}

func (p *StaticProvider) resolve(ids []string) []Sense {
	out := make([]Sense, 0, len(ids))
	for _, id := range ids {
		if s, ok := p.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func lookupKey(word string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(word), " ", "_"))
}

type staticSense struct {
	spec SenseSpec
	p    *StaticProvider
}

func (s *staticSense) Name() string            { return s.spec.ID }
func (s *staticSense) Hypernyms() []Sense      { return s.p.resolve(s.spec.Hypernyms) }
func (s *staticSense) Hyponyms() []Sense       { return s.p.resolve(s.spec.Hyponyms) }
func (s *staticSense) MemberHolonyms() []Sense { return s.p.resolve(s.spec.MemberHolonyms) }

func (s *staticSense) PrimaryLemma() Lemma {
	if len(s.spec.Lemmas) == 0 {
		return nil
	}
	return staticLemma{name: s.spec.Lemmas[0], antonyms: s.spec.Antonyms}
}

type staticLemma struct {
	name     string
	antonyms []string
}

func (l staticLemma) Name() string { return l.name }

func (l staticLemma) Antonyms() []Lemma {
	out := make([]Lemma, len(l.antonyms))
	for i, a := range l.antonyms {
		out[i] = staticLemma{name: a}
	}
	return out
}
