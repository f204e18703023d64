package discovery

import (
	"strings"
	"testing"

	"github.com/waftester/mutaprobe/pkg/probe"
)

func page(status int, body string) *probe.Response {
	return &probe.Response{StatusCode: status, Body: []byte(body)}
}

func TestIsNewResource(t *testing.T) {
	baseline := page(200, strings.Repeat("welcome to the home page of the shop ", 10))
	different := strings.Repeat("annual report revenue grew across regions ", 10)

	alwaysNotFound := NotFoundFunc(func(*probe.Response) bool { return true })

	tests := []struct {
		name      string
		nf        NotFoundDetector
		candidate *probe.Response
		want      bool
	}{
		{"identical body", StatusNotFound, page(200, string(baseline.Body)), false},
		{"identical body 404", StatusNotFound, page(404, string(baseline.Body)), false},
		{"different body", StatusNotFound, page(200, different), true},
		{"different body but 404", StatusNotFound, page(404, different), false},
		{"detector says not found", alwaysNotFound, page(200, different), false},
		{"nil candidate", StatusNotFound, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.nf, 0.85)
			if got := c.IsNewResource(baseline, tt.candidate); got != tt.want {
				t.Errorf("IsNewResource() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNewResource_Threshold(t *testing.T) {
	base := page(200, "a b c d e f g h i j")
	cand := page(200, "a b c d e f g h x y") // ratio 0.8

	if !New(nil, 0.85).IsNewResource(base, cand) {
		t.Error("0.8 similarity is below 0.85")
	}
	if New(nil, 0.75).IsNewResource(base, cand) {
		t.Error("0.8 similarity is not below 0.75")
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil, 0)
	if c.Threshold() != 0.85 {
		t.Errorf("Threshold() = %v, want 0.85", c.Threshold())
	}
	if !c.notFound.IsNotFound(page(404, "")) {
		t.Error("default detector must treat 404 as not found")
	}
}

func TestIsNewResource_NilBaseline(t *testing.T) {
	if !New(nil, 0.85).IsNewResource(nil, page(200, "content")) {
		t.Error("any content differs from a missing baseline")
	}
}

func TestIsNewResource_MinifiedPageEchoingPath(t *testing.T) {
	echo := func(path string) *probe.Response {
		return page(200, "<html><head><title>Not Found</title></head><body><p>Path: "+path+"</p></body></html>")
	}
	if New(nil, 0.85).IsNewResource(echo("/index"), echo("/summary")) {
		t.Error("a page that only echoes a different path is not new content")
	}
}
