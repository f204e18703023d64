package lexicon

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProvider_Loads(t *testing.T) {
	t.Parallel()
	p, err := DefaultProvider()
	require.NoError(t, err)
	assert.Greater(t, p.Len(), 20)

	again, err := DefaultProvider()
	require.NoError(t, err)
	assert.Same(t, p, again)
}

func TestDefaultProvider_Blue(t *testing.T) {
	t.Parallel()
	p, err := DefaultProvider()
	require.NoError(t, err)
	e := NewExpander(p, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	got := e.Expand("blue", 5)
	assert.Len(t, got, 5)
	assert.Contains(t, got, "red")
	assert.NotContains(t, got, "blue")
}

func TestDefaultProvider_Antonyms(t *testing.T) {
	t.Parallel()
	p, err := DefaultProvider()
	require.NoError(t, err)

	senses, err := p.SensesOf("white")
	require.NoError(t, err)
	require.Len(t, senses, 1)
	lemma := senses[0].PrimaryLemma()
	require.NotNil(t, lemma)
	require.Len(t, lemma.Antonyms(), 1)
	assert.Equal(t, "black", lemma.Antonyms()[0].Name())
}

func TestStaticProvider_LookupIsCaseAndSpaceInsensitive(t *testing.T) {
	t.Parallel()
	p, err := NewStaticProvider(Graph{Senses: []SenseSpec{
		{ID: "big_dog.n.01", Lemmas: []string{"big_dog"}},
	}})
	require.NoError(t, err)

	for _, w := range []string{"big_dog", "Big Dog", " BIG_DOG "} {
		senses, err := p.SensesOf(w)
		require.NoError(t, err, w)
		assert.Len(t, senses, 1, w)
	}
}

func TestStaticProvider_UnknownWord(t *testing.T) {
	t.Parallel()
	p, err := NewStaticProvider(Graph{})
	require.NoError(t, err)
	_, err = p.SensesOf("nothing")
	assert.True(t, errors.Is(err, ErrUnknownWord))
}

func TestStaticProvider_RejectsBadGraphs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		g    Graph
	}{
		{"missing id", Graph{Senses: []SenseSpec{{Lemmas: []string{"x"}}}}},
		{"duplicate id", Graph{Senses: []SenseSpec{{ID: "a.n.01"}, {ID: "a.n.01"}}}},
		{"dangling relation", Graph{Senses: []SenseSpec{{ID: "a.n.01", Hyponyms: []string{"b.n.01"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewStaticProvider(tt.g)
			assert.Error(t, err)
		})
	}
}

func TestLoadProvider(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.yaml")
	yamlDoc := `senses:
  - id: cat.n.01
    lemmas: [cat]
    hypernyms: [feline.n.01]
  - id: feline.n.01
    lemmas: [feline]
    hyponyms: [cat.n.01, lion.n.01]
  - id: lion.n.01
    lemmas: [lion]
    hypernyms: [feline.n.01]
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

	p, err := LoadProvider(path)
	require.NoError(t, err)

	e := NewExpander(p, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	assert.Equal(t, []string{"lion", "feline"}, e.Expand("cat", 5))
}

func TestLoadProvider_JSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "graph.json")
	jsonDoc := `{"senses": [
		{"id": "cat.n.01", "lemmas": ["cat"], "hypernyms": ["feline.n.01"]},
		{"id": "feline.n.01", "lemmas": ["feline"], "hyponyms": ["cat.n.01", "lion.n.01"]},
		{"id": "lion.n.01", "lemmas": ["lion"], "hypernyms": ["feline.n.01"]}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(jsonDoc), 0o600))

	p, err := LoadProvider(path)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())

	e := NewExpander(p, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	assert.Equal(t, []string{"lion", "feline"}, e.Expand("cat", 5))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"senses": [`), 0o600))
	_, err = LoadProvider(bad)
	assert.Error(t, err)
}

func TestLoadProvider_Errors(t *testing.T) {
	t.Parallel()
	_, err := LoadProvider(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("senses: [::"), 0o600))
	_, err = LoadProvider(bad)
	assert.Error(t, err)
}
