package mutation

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryKeepsOrder(t *testing.T) {
	q := ParseQuery("b=2&a=1&b=3&c=")
	require.Len(t, q, 3)
	assert.Equal(t, Param{Name: "b", Values: []string{"2", "3"}}, q[0])
	assert.Equal(t, Param{Name: "a", Values: []string{"1"}}, q[1])
	assert.Equal(t, Param{Name: "c", Values: []string{""}}, q[2])
	assert.Equal(t, "b=2&b=3&a=1&c=", q.Encode())
}

func TestParseQueryKeepsMalformedEscape(t *testing.T) {
	q := ParseQuery("q=100%&a%zz=b&c=%41")
	assert.Equal(t, []string{"100%"}, q.Get("q"))
	assert.Equal(t, []string{"b"}, q.Get("a%zz"))
	assert.Equal(t, []string{"A"}, q.Get("c"))

	r, err := NewRequest("", "http://example.com/search?q=100%&page=2", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"100%"}, r.Query().Get("q"))
	assert.Equal(t, []string{"2"}, r.Query().Get("page"))
	assert.Equal(t, "http://example.com/search?q=100%25&page=2", r.String())
}

func TestNewRequest(t *testing.T) {
	hdr := http.Header{"X-Test": []string{"1"}}
	body := []byte("payload")
	r, err := NewRequest("", "https://example.com:8443/a/b/index.php?id=7#frag", body, hdr)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, r.Method())
	assert.Equal(t, "8443", r.Port())
	assert.Equal(t, "index.php", r.Filename())
	assert.Equal(t, "/a/b/", r.DirPath())
	assert.Equal(t, "https://example.com:8443/a/b/index.php?id=7", r.String())

	// caller storage is not shared
	hdr.Set("X-Test", "2")
	body[0] = 'X'
	assert.Equal(t, "1", r.Header().Get("X-Test"))
	assert.Equal(t, "payload", string(r.Body()))
}

func TestNewRequestRejectsRelative(t *testing.T) {
	_, err := NewRequest(http.MethodGet, "/just/a/path", nil, nil)
	assert.Error(t, err)
}

func TestPortDefaults(t *testing.T) {
	assert.Equal(t, "80", MustRequest("GET", "http://example.com/").Port())
	assert.Equal(t, "443", MustRequest("GET", "https://example.com/").Port())
}

func TestWithQueryValueErrors(t *testing.T) {
	r := MustRequest("GET", "http://example.com/?a=1&a=2")

	_, err := r.WithQueryValue("missing", 0, "x")
	assert.True(t, errors.Is(err, ErrUnknownParameter))

	_, err = r.WithQueryValue("a", 2, "x")
	assert.True(t, errors.Is(err, ErrLocusOutOfRange))

	_, err = r.WithQueryValue("a", -1, "x")
	assert.True(t, errors.Is(err, ErrLocusOutOfRange))
}

func TestCloneIsDeep(t *testing.T) {
	r, err := NewRequest("POST", "http://example.com/?a=1", []byte("b"), http.Header{"K": {"v"}})
	require.NoError(t, err)

	c := r.Clone()
	c.query[0].Values[0] = "changed"
	c.body[0] = 'X'
	c.header.Set("K", "other")

	assert.Equal(t, "1", r.Query().Get("a")[0])
	assert.Equal(t, "b", string(r.Body()))
	assert.Equal(t, "v", r.Header().Get("K"))
}
