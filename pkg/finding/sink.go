package finding

import "sync"

// Sink accumulates the findings of one probing round. Insertion keeps
// duplicates; uniqueness is applied when reading with UniqueBy.
// The zero value is ready to use and safe for concurrent use.
type Sink struct {
	mu       sync.Mutex
	findings []Finding
}

// Add appends f.
func (s *Sink) Add(f Finding) {
	s.mu.Lock()
	s.findings = append(s.findings, f)
	s.mu.Unlock()
}

// Len returns the number of findings added, duplicates included.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings)
}

// All returns a copy of every finding in insertion order.
func (s *Sink) All() []Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

// UniqueBy returns the first finding seen for each distinct key, in
// insertion order.
func (s *Sink) UniqueBy(key func(Finding) string) []Finding {
	return Unique(s.All(), key)
}

// Reset drops every finding.
func (s *Sink) Reset() {
	s.mu.Lock()
	s.findings = nil
	s.mu.Unlock()
}

// Unique keeps the first item for each distinct key, preserving the order
// in which keys were first seen.
func Unique[T any, K comparable](items []T, key func(T) K) []T {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}
