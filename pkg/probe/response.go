package probe

import (
	"net/http"
	"strings"
	"time"
)

// Response is what the transport returned for one mutant. The core only
// reads it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// ID correlates the response with transport logs and findings.
	ID string

	// URL is the final request URL.
	URL string

	// Elapsed is the round-trip time measured by the transport.
	Elapsed time.Duration
}

// Values returns all values of the named header. The name is matched
// case-insensitively even when the map holds non-canonical keys.
func (r *Response) Values(name string) []string {
	if r == nil || r.Header == nil {
		return nil
	}
	if v, ok := r.Header[http.CanonicalHeaderKey(name)]; ok {
		return v
	}
	for k, v := range r.Header {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

// Get returns the first value of the named header, or "".
func (r *Response) Get(name string) string {
	if v := r.Values(name); len(v) > 0 {
		return v[0]
	}
	return ""
}

// ContentType returns the media type without parameters, lowercased.
func (r *Response) ContentType() string {
	ct, _, _ := strings.Cut(r.Get("Content-Type"), ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
