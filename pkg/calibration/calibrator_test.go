package calibration

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waftester/mutaprobe/pkg/mutation"
	"github.com/waftester/mutaprobe/pkg/probe"
)

const softNotFound = "<html><body><h1>Sorry</h1> the page you requested could not be found on this server</body></html>"

// echoNotFound is a minified not-found page that repeats the path.
func echoNotFound(path string) string {
	return "<html><head><title>Not Found</title></head><body><p>Path: " + path + "</p></body></html>"
}

// fakeSite answers 200 with a soft-404 page for everything except known paths.
type fakeSite struct {
	mu    sync.Mutex
	pages map[string]string
	hits  []string
	fail  bool
	echo  bool
}

func (f *fakeSite) SendRequest(_ context.Context, req mutation.Request, _ bool) (*probe.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits = append(f.hits, req.Path())
	if f.fail {
		return nil, errors.New("connection refused")
	}
	body, ok := f.pages[req.Path()]
	if !ok {
		body = softNotFound
		if f.echo {
			body = echoNotFound(req.Path())
		}
	}
	return &probe.Response{StatusCode: http.StatusOK, Body: []byte(body), URL: req.String()}, nil
}

func TestCalibrate_CachesPerDirectory(t *testing.T) {
	site := &fakeSite{}
	c := New(site)
	req := mutation.MustRequest(http.MethodGet, "http://site.test/docs/report.pdf")

	b, err := c.Calibrate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, b, 2)
	assert.True(t, strings.HasSuffix(b[0].URL, ".pdf"))
	assert.True(t, strings.HasPrefix(b[0].URL, "http://site.test/docs/"))

	_, err = c.Calibrate(context.Background(), mutation.MustRequest(http.MethodGet, "http://site.test/docs/other.pdf"))
	require.NoError(t, err)
	assert.Len(t, site.hits, 2, "second call in the same directory must hit the cache")
}

func TestCalibrate_NoExtension(t *testing.T) {
	c := New(&fakeSite{})
	b, err := c.Calibrate(context.Background(), mutation.MustRequest(http.MethodGet, "http://site.test/dir/"))
	require.NoError(t, err)
	assert.Len(t, b, 1)
}

func TestCalibrate_AllFail(t *testing.T) {
	c := New(&fakeSite{fail: true})
	_, err := c.Calibrate(context.Background(), mutation.MustRequest(http.MethodGet, "http://site.test/a.php"))
	assert.ErrorIs(t, err, ErrNoBaseline)
}

func TestIsNotFound(t *testing.T) {
	c := New(&fakeSite{})
	_, err := c.Calibrate(context.Background(), mutation.MustRequest(http.MethodGet, "http://site.test/docs/index.html"))
	require.NoError(t, err)

	tests := []struct {
		name string
		resp *probe.Response
		want bool
	}{
		{"status 404", &probe.Response{StatusCode: 404, URL: "http://other.test/x"}, true},
		{"soft 404 same dir", &probe.Response{StatusCode: 200, URL: "http://site.test/docs/summary.html", Body: []byte(softNotFound)}, true},
		{"near soft 404", &probe.Response{StatusCode: 200, URL: "http://site.test/docs/a.html", Body: []byte(softNotFound + " ")}, true},
		{"real page", &probe.Response{StatusCode: 200, URL: "http://site.test/docs/a.html", Body: []byte("<html><body>quarterly summary with numbers and tables</body></html>")}, false},
		{"uncalibrated dir", &probe.Response{StatusCode: 200, URL: "http://site.test/other/a.html", Body: []byte(softNotFound)}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsNotFound(tt.resp))
		})
	}
}

func TestIsNotFound_MinifiedPageEchoingPath(t *testing.T) {
	c := New(&fakeSite{echo: true})
	_, err := c.Calibrate(context.Background(), mutation.MustRequest(http.MethodGet, "http://site.test/docs/index.html"))
	require.NoError(t, err)

	resp := &probe.Response{
		StatusCode: http.StatusOK,
		URL:        "http://site.test/docs/summary.html",
		Body:       []byte(echoNotFound("/docs/summary.html")),
	}
	assert.True(t, c.IsNotFound(resp))
}
