package probe

import (
	"net/http"
	"testing"
)

func TestResponseHeaderLookup(t *testing.T) {
	r := &Response{Header: http.Header{
		"Location":     {"http://a/"},
		"refresh":      {"0;url=http://b/"},
		"Content-Type": {"Text/HTML; charset=utf-8"},
	}}

	tests := []struct {
		name string
		want string
	}{
		{"location", "http://a/"},
		{"LOCATION", "http://a/"},
		{"Refresh", "0;url=http://b/"},
		{"uri", ""},
	}
	for _, tt := range tests {
		if got := r.Get(tt.name); got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
	if ct := r.ContentType(); ct != "text/html" {
		t.Errorf("ContentType() = %q", ct)
	}

	var nilResp *Response
	if nilResp.Get("x") != "" {
		t.Error("nil response must have no headers")
	}
}
