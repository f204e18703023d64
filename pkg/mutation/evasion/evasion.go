// Package evasion provides request evasions applied just before a probe
// leaves the host. An evasion rewrites the request path so that naive
// filters on the target side do not recognize the resource.
package evasion

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/waftester/mutaprobe/pkg/mutation"
)

// Evasion rewrites a request. Apply must not modify its argument.
type Evasion interface {
	Name() string
	Description() string
	Apply(req mutation.Request) mutation.Request
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Evasion)
)

func init() {
	for _, e := range []Evasion{
		&ReversedSlashes{},
		&SelfReference{},
	} {
		Register(e)
	}
}

// Register adds an evasion to the global registry, replacing any evasion
// with the same name.
func Register(e Evasion) {
	mu.Lock()
	defer mu.Unlock()
	registry[e.Name()] = e
}

// Get returns the named evasion.
func Get(name string) (Evasion, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[name]
	return e, ok
}

// Names returns all registered evasion names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve looks up every name and fails on the first unknown one.
func Resolve(names []string) ([]Evasion, error) {
	out := make([]Evasion, 0, len(names))
	for _, n := range names {
		e, ok := Get(strings.TrimSpace(n))
		if !ok {
			return nil, fmt.Errorf("evasion: unknown evasion %q (available: %s)", n, strings.Join(Names(), ", "))
		}
		out = append(out, e)
	}
	return out, nil
}

// Chain applies evasions in order.
func Chain(req mutation.Request, evasions []Evasion) mutation.Request {
	for _, e := range evasions {
		req = e.Apply(req)
	}
	return req
}

// =============================================================================
// PATH EVASIONS
// =============================================================================

// ReversedSlashes turns every slash after the first into a backslash:
// /a/b/c.htm becomes /a\b\c.htm.
type ReversedSlashes struct{}

func (e *ReversedSlashes) Name() string { return "reversed_slashes" }
func (e *ReversedSlashes) Description() string {
	return "Change the slashes in the URL path to backslashes"
}

func (e *ReversedSlashes) Apply(req mutation.Request) mutation.Request {
	p := req.Path()
	if !strings.Contains(p, "/") {
		return req
	}
	p = strings.ReplaceAll(p, "/", `\`)
	p = strings.Replace(p, `\`, "/", 1)
	return req.WithPath(p)
}

// SelfReference inserts a "./" segment before every path segment:
// /a/b becomes /./a/./b.
type SelfReference struct{}

func (e *SelfReference) Name() string { return "self_reference" }
func (e *SelfReference) Description() string {
	return "Insert self-referencing ./ segments into the URL path"
}

func (e *SelfReference) Apply(req mutation.Request) mutation.Request {
	p := req.Path()
	if p == "" || p == "/" {
		return req
	}
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	var b strings.Builder
	for _, s := range segs {
		b.WriteString("/./")
		b.WriteString(s)
	}
	return req.WithPath(b.String())
}
