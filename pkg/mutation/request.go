// Package mutation builds request variants ("mutants") from a seed request.
//
// A seed [Request] is never modified: every transformation returns a new
// value that owns its own URL, query, body and header storage, so mutants
// of one seed can be sent from different goroutines without sharing state.
package mutation

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Param is one query parameter name with its values in order of appearance.
type Param struct {
	Name   string
	Values []string
}

// Query is an ordered mapping of parameter name to values.
type Query []Param

// ParseQuery parses a raw query string keeping parameter and value order.
// Values of a repeated name are grouped under the first appearance of that name.
// A name or value with a malformed escape such as "100%" is kept as written.
func ParseQuery(raw string) Query {
	var q Query
	index := make(map[string]int)
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		rawName, rawValue, _ := strings.Cut(pair, "=")
		name := unescape(rawName)
		value := unescape(rawValue)
		if i, ok := index[name]; ok {
			q[i].Values = append(q[i].Values, value)
			continue
		}
		index[name] = len(q)
		q = append(q, Param{Name: name, Values: []string{value}})
	}
	return q
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// Encode renders the query in order. Repeated names are emitted once per value.
func (q Query) Encode() string {
	var b strings.Builder
	for _, p := range q {
		for _, v := range p.Values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(p.Name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// Get returns the values of name, or nil.
func (q Query) Get(name string) []string {
	if i := q.index(name); i >= 0 {
		return q[i].Values
	}
	return nil
}

// Clone returns a deep copy of q.
func (q Query) Clone() Query {
	if q == nil {
		return nil
	}
	out := make(Query, len(q))
	for i, p := range q {
		out[i] = Param{Name: p.Name, Values: append([]string(nil), p.Values...)}
	}
	return out
}

func (q Query) index(name string) int {
	for i, p := range q {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Request is an immutable description of an HTTP request. Use the With*
// methods to derive variants; they never touch the receiver's storage.
type Request struct {
	method string
	url    url.URL
	query  Query
	body   []byte
	header http.Header
}

// NewRequest parses rawURL and copies body and header.
func NewRequest(method, rawURL string, body []byte, header http.Header) (Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Request{}, fmt.Errorf("mutation: parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Request{}, fmt.Errorf("mutation: url %q must be absolute", rawURL)
	}
	q := ParseQuery(u.RawQuery)
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	if method == "" {
		method = http.MethodGet
	}
	return Request{
		method: method,
		url:    *u,
		query:  q,
		body:   bytes.Clone(body),
		header: header.Clone(),
	}, nil
}

// MustRequest is NewRequest for tests and constants; it panics on error.
func MustRequest(method, rawURL string) Request {
	r, err := NewRequest(method, rawURL, nil, nil)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Request) Method() string      { return r.method }
func (r Request) Scheme() string      { return r.url.Scheme }
func (r Request) Host() string        { return r.url.Host }
func (r Request) Path() string        { return r.url.Path }
func (r Request) Query() Query        { return r.query }
func (r Request) Body() []byte        { return r.body }
func (r Request) Header() http.Header { return r.header }

// Port returns the explicit port, or the scheme default.
func (r Request) Port() string {
	if p := r.url.Port(); p != "" {
		return p
	}
	if r.url.Scheme == "https" {
		return "443"
	}
	return "80"
}

// URL returns a copy of the request URL including the encoded query.
func (r Request) URL() *url.URL {
	u := r.url
	u.RawQuery = r.query.Encode()
	return &u
}

// String returns the full URL.
func (r Request) String() string {
	return r.URL().String()
}

// Filename returns the last path segment, empty for directory paths.
func (r Request) Filename() string {
	p := r.url.Path
	return p[strings.LastIndexByte(p, '/')+1:]
}

// DirPath returns the path up to and including the last slash.
func (r Request) DirPath() string {
	p := r.url.Path
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return "/"
	}
	return p[:i+1]
}

// Clone returns a deep copy of r.
func (r Request) Clone() Request {
	c := r
	if r.url.User != nil {
		u := *r.url.User
		c.url.User = &u
	}
	c.query = r.query.Clone()
	c.body = bytes.Clone(r.body)
	c.header = r.header.Clone()
	return c
}

// WithQueryValue returns a copy with the value at (name, occurrence) replaced.
func (r Request) WithQueryValue(name string, occurrence int, value string) (Request, error) {
	i := r.query.index(name)
	if i < 0 {
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	if occurrence < 0 || occurrence >= len(r.query[i].Values) {
		return Request{}, fmt.Errorf("%w: %q has %d occurrence(s), index %d",
			ErrLocusOutOfRange, name, len(r.query[i].Values), occurrence)
	}
	c := r.Clone()
	c.query[i].Values[occurrence] = value
	return c, nil
}

// WithPath returns a copy with a new URL path.
func (r Request) WithPath(path string) Request {
	c := r.Clone()
	c.url.Path = path
	c.url.RawPath = ""
	return c
}

// WithFilename returns a copy whose last path segment is filename.
func (r Request) WithFilename(filename string) Request {
	return r.WithPath(r.DirPath() + filename)
}

// WithURL returns a copy aimed at rawURL, keeping method, body and header.
func (r Request) WithURL(rawURL string) (Request, error) {
	target, err := NewRequest(r.method, rawURL, r.body, r.header)
	if err != nil {
		return Request{}, err
	}
	return target, nil
}
