package evasion

import (
	"testing"

	"github.com/waftester/mutaprobe/pkg/mutation"
)

func TestReversedSlashes(t *testing.T) {
	eva := &ReversedSlashes{}
	if eva.Name() != "reversed_slashes" {
		t.Errorf("Expected name 'reversed_slashes', got '%s'", eva.Name())
	}

	tests := []struct {
		url  string
		want string
	}{
		{"http://h/a/b/c.htm", `/a\b\c.htm`},
		{"http://h/", "/"},
		{"http://h/index.php", "/index.php"},
		{"http://h/dir/", `/dir\`},
	}
	for _, tt := range tests {
		seed := mutation.MustRequest("GET", tt.url)
		got := eva.Apply(seed)
		if got.Path() != tt.want {
			t.Errorf("Apply(%q) path = %q, want %q", tt.url, got.Path(), tt.want)
		}
	}
}

func TestSelfReference(t *testing.T) {
	eva := &SelfReference{}
	tests := []struct {
		url  string
		want string
	}{
		{"http://h/a/b", "/./a/./b"},
		{"http://h/a/", "/./a/./"},
		{"http://h/", "/"},
	}
	for _, tt := range tests {
		got := eva.Apply(mutation.MustRequest("GET", tt.url))
		if got.Path() != tt.want {
			t.Errorf("Apply(%q) path = %q, want %q", tt.url, got.Path(), tt.want)
		}
	}
}

func TestApplyKeepsSeed(t *testing.T) {
	seed := mutation.MustRequest("GET", "http://h/a/b/c.htm?x=1")
	_ = Chain(seed, []Evasion{&ReversedSlashes{}, &SelfReference{}})
	if seed.Path() != "/a/b/c.htm" {
		t.Fatalf("seed path changed to %q", seed.Path())
	}
}

func TestRegistry(t *testing.T) {
	names := Names()
	if len(names) < 2 {
		t.Fatalf("Expected at least 2 registered evasions, got %v", names)
	}
	if _, ok := Get("reversed_slashes"); !ok {
		t.Error("reversed_slashes not registered")
	}

	evs, err := Resolve([]string{"reversed_slashes", " self_reference "})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("Expected 2 evasions, got %d", len(evs))
	}

	if _, err := Resolve([]string{"nope"}); err == nil {
		t.Error("Expected error for unknown evasion")
	}
}

func TestChainOrder(t *testing.T) {
	got := Chain(mutation.MustRequest("GET", "http://h/a/b"), []Evasion{&SelfReference{}, &ReversedSlashes{}})
	if want := `/.\a\.\b`; got.Path() != want {
		t.Errorf("Chain path = %q, want %q", got.Path(), want)
	}
}
