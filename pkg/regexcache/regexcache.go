// Package regexcache caches compiled regular expressions that are built at
// runtime, such as patterns embedding a configured test URL.
//
//	re, err := regexcache.WithLiteral(`(window\.location|location\.).*(%s)`, testURL)
//	if err != nil {
//	    // handle error
//	}
//	matched := re.MatchString(statement)
package regexcache

import (
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
)

// MaxEntries bounds the cache; once reached, the cache is reset before the
// next insert.
const MaxEntries = 1024

var (
	cache sync.Map // pattern -> *regexp.Regexp
	size  atomic.Int64
)

// Get returns the compiled regexp for pattern, compiling it on first use.
func Get(pattern string) (*regexp.Regexp, error) {
	if cached, ok := cache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("regexcache: compile %q: %w", pattern, err)
	}

	if size.Load() >= MaxEntries {
		Clear()
	}
	actual, loaded := cache.LoadOrStore(pattern, re)
	if !loaded {
		size.Add(1)
	}
	return actual.(*regexp.Regexp), nil
}

// WithLiteral formats format with every literal quoted by
// regexp.QuoteMeta and returns the cached compiled result.
func WithLiteral(format string, literals ...string) (*regexp.Regexp, error) {
	args := make([]any, len(literals))
	for i, l := range literals {
		args[i] = regexp.QuoteMeta(l)
	}
	return Get(fmt.Sprintf(format, args...))
}

// Clear removes all cached regular expressions.
func Clear() {
	cache.Range(func(key, _ any) bool {
		cache.Delete(key)
		return true
	})
	size.Store(0)
}
