package jsonutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestUnmarshal(t *testing.T) {
	t.Run("valid object", func(t *testing.T) {
		var result map[string]any
		if err := Unmarshal([]byte(`{"name":"test","value":42}`), &result); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if result["name"] != "test" {
			t.Errorf("expected name=test, got %v", result["name"])
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		var result map[string]any
		if err := Unmarshal([]byte(`{invalid}`), &result); err == nil {
			t.Error("Unmarshal() expected error for invalid JSON")
		}
	})
}

func TestEncoderWritesOneValuePerLine(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamEncoder(&buf)
	for i := 1; i <= 3; i++ {
		if err := enc.Encode(map[string]int{"n": i}); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[1] != `{"n":2}` {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestDecoderReadsStream(t *testing.T) {
	type rec struct {
		Name string `json:"name"`
	}
	dec := NewStreamDecoder(strings.NewReader("{\"name\":\"a\"}\n{\"name\":\"b\"}\n"))

	var got []string
	for dec.More() {
		var r rec
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		got = append(got, r.Name)
	}
	if strings.Join(got, ",") != "a,b" {
		t.Errorf("decoded %v, want [a b]", got)
	}
}
