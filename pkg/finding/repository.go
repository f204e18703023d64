package finding

import (
	"fmt"
	"io"
	"sync"

	"github.com/waftester/mutaprobe/pkg/jsonutil"
)

// Repository is the shared store findings are flushed into at the end of
// a round.
type Repository interface {
	Append(plugin, category string, f Finding) error
}

// Record is a finding as stored by a repository.
type Record struct {
	Plugin   string  `json:"plugin"`
	Category string  `json:"category"`
	Finding  Finding `json:"finding"`
}

// MemoryRepository keeps records in memory.
type MemoryRepository struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Append stores f under plugin and category.
func (r *MemoryRepository) Append(plugin, category string, f Finding) error {
	if err := f.Validate(); err != nil {
		return err
	}
	f.Plugin = plugin
	r.mu.Lock()
	r.records = append(r.records, Record{Plugin: plugin, Category: category, Finding: f})
	r.mu.Unlock()
	return nil
}

// Records returns a copy of the stored records in append order.
func (r *MemoryRepository) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Findings returns the stored findings for category, or every finding when
// category is empty.
func (r *MemoryRepository) Findings(category string) []Finding {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Finding
	for _, rec := range r.records {
		if category == "" || rec.Category == category {
			out = append(out, rec.Finding)
		}
	}
	return out
}

// ReadJSONL decodes the records a JSONLRepository wrote, in order.
func ReadJSONL(r io.Reader) ([]Record, error) {
	dec := jsonutil.NewStreamDecoder(r)
	var out []Record
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return out, fmt.Errorf("finding: decode record %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// JSONLRepository writes one JSON record per line.
type JSONLRepository struct {
	mu     sync.Mutex
	enc    *jsonutil.Encoder
	closer io.Closer
	closed bool
}

// NewJSONLRepository writes records to w. If w is an io.Closer it is closed
// by Close.
func NewJSONLRepository(w io.Writer) *JSONLRepository {
	r := &JSONLRepository{enc: jsonutil.NewStreamEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// Append encodes f as one line.
func (r *JSONLRepository) Append(plugin, category string, f Finding) error {
	if err := f.Validate(); err != nil {
		return err
	}
	f.Plugin = plugin
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRepositoryClosed
	}
	return r.enc.Encode(Record{Plugin: plugin, Category: category, Finding: f})
}

// Close stops further appends and closes the underlying writer if it has
// a Close method.
func (r *JSONLRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
