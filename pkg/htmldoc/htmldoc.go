// Package htmldoc parses HTML response bodies and extracts the few
// fragments redirect detection needs.
package htmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/waftester/mutaprobe/pkg/probe"
)

// ErrNoParser is returned for responses whose content type is not HTML.
var ErrNoParser = errors.New("htmldoc: no parser for content type")

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

// Parse parses resp as HTML. Responses declared as HTML or XHTML are
// accepted; undeclared and text/plain bodies are accepted only if they
// sniff as HTML. Anything else yields ErrNoParser.
func Parse(resp *probe.Response) (*Document, error) {
	if resp == nil {
		return nil, ErrNoParser
	}
	if !parseable(resp.ContentType(), resp.Body) {
		return nil, fmt.Errorf("%w: %q", ErrNoParser, resp.ContentType())
	}
	root, err := html.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse: %w", err)
	}
	return &Document{root: root}, nil
}

func parseable(mediaType string, body []byte) bool {
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return true
	case "", "text/plain":
		return strings.HasPrefix(http.DetectContentType(body), "text/html")
	default:
		return false
	}
}

// MetaRefreshDirectives returns the raw content attribute of every
// <meta http-equiv="refresh"> element in document order.
func (d *Document) MetaRefreshDirectives() []string {
	var out []string
	d.walk(func(n *html.Node) {
		if n.Data != "meta" || !strings.EqualFold(attr(n, "http-equiv"), "refresh") {
			return
		}
		if content, ok := lookup(n, "content"); ok {
			out = append(out, content)
		}
	})
	return out
}

// walk calls fn for every element node in document order.
func (d *Document) walk(fn func(*html.Node)) {
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			fn(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(d.root)
}

func lookup(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := lookup(n, key)
	return v
}
