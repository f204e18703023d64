package compare

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "a b c", "a b c", 1, 1},
		{"both empty", "", "", 1, 1},
		{"one empty", "a b c", "", 0, 0},
		{"disjoint", "a b c d", "w x y z", 0, 0},
		{"whitespace only differs", "a  b\nc", "a b c", 1, 1},
		{"half", "a b c d", "a b x y", 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio([]byte(tt.a), []byte(tt.b))
			if got < tt.min || got > tt.max {
				t.Errorf("Ratio(%q, %q) = %v, want in [%v, %v]", tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}

func TestBelow(t *testing.T) {
	page := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	nearly := page + "extra"
	other := strings.Repeat("completely different content here ", 20)

	if Below([]byte(page), []byte(page), 0.85) {
		t.Error("identical bodies are never below the threshold")
	}
	if Below([]byte(page), []byte(nearly), 0.85) {
		t.Error("near-identical bodies should be above 0.85")
	}
	if !Below([]byte(page), []byte(other), 0.85) {
		t.Error("different bodies should be below 0.85")
	}
	if !AtLeast([]byte(page), []byte(nearly), 0.85) {
		t.Error("AtLeast should mirror Below")
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint([]byte("abc")) != Fingerprint([]byte("abc")) {
		t.Error("fingerprint must be deterministic")
	}
	if Fingerprint([]byte("abc")) == Fingerprint([]byte("abd")) {
		t.Error("fingerprints of different bodies should differ")
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a  b\nc", []string{"a", "b", "c"}},
		{"<p>Path: /index</p>", []string{"<", "p", ">", "Path", ":", "/", "index", "<", "/", "p", ">"}},
		{"report.v2_final", []string{"report", ".", "v2_final"}},
		{"café 100%", []string{"café", "100", "%"}},
	}
	for _, tt := range tests {
		if got := Tokens([]byte(tt.in)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokens(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMinifiedPageEchoingPath(t *testing.T) {
	notFound := func(path string) []byte {
		return []byte("<html><head><title>Not Found</title></head><body><p>Path: " + path + "</p></body></html>")
	}
	a, b := notFound("/index"), notFound("/summary")

	if Below(a, b, 0.85) {
		t.Errorf("Ratio = %v, pages differing only in the echoed path must stay above 0.85", Ratio(a, b))
	}
	if !AtLeast(a, b, 0.90) {
		t.Errorf("Ratio = %v, want at least 0.90", Ratio(a, b))
	}
}

func TestLongBodiesWithDifferentTails(t *testing.T) {
	words := func(prefix string, n int) string {
		var sb strings.Builder
		for i := 0; i < n; i++ {
			fmt.Fprintf(&sb, "%s%d ", prefix, i)
		}
		return sb.String()
	}
	head := words("s", 5000)
	a := []byte(head + words("a", 3000))
	b := []byte(head + words("b", 3000))

	if got := Ratio(a, b); got != 0.5 {
		t.Errorf("Ratio = %v, want 0.5 for a shared head and disjoint tails", got)
	}
	if !Below(a, b, 0.85) {
		t.Error("a different tail must count as different content")
	}
}
