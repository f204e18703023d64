// Package calibration learns what a site's "not found" page looks like so
// probes that hit it are not mistaken for real content.
//
// For each directory the calibrator requests up to two random, certainly
// missing resources (one with the probed extension, one without) and keeps
// their bodies. A response is not-found when
// its status is 404 or its body is near-identical to one of those pages,
// which catches soft-404 sites that answer 200 for everything.
package calibration

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/waftester/mutaprobe/pkg/compare"
	"github.com/waftester/mutaprobe/pkg/defaults"
	"github.com/waftester/mutaprobe/pkg/mutation"
	"github.com/waftester/mutaprobe/pkg/probe"
)

// ErrNoBaseline is returned when none of the calibration requests succeed.
var ErrNoBaseline = errors.New("calibration: no baseline response")

// Fetcher sends a single request. httpclient.Sender satisfies it.
type Fetcher interface {
	SendRequest(ctx context.Context, req mutation.Request, followRedirects bool) (*probe.Response, error)
}

// Baseline is one calibrated not-found page.
type Baseline struct {
	URL         string
	StatusCode  int
	Fingerprint uint64
	Body        []byte
}

// Calibrator caches not-found baselines per directory.
type Calibrator struct {
	fetch     Fetcher
	threshold float64
	logger    *slog.Logger

	mu        sync.RWMutex
	baselines map[string][]Baseline
}

// Option configures a Calibrator.
type Option func(*Calibrator)

// WithThreshold sets the similarity at or above which a body matches a
// baseline (default defaults.NotFoundSimilarity).
func WithThreshold(t float64) Option {
	return func(c *Calibrator) { c.threshold = t }
}

// WithLogger sets a custom structured logger for the calibrator.
func WithLogger(l *slog.Logger) Option {
	return func(c *Calibrator) { c.logger = l }
}

// New creates a calibrator that fetches through f.
func New(f Fetcher, opts ...Option) *Calibrator {
	c := &Calibrator{
		fetch:     f,
		threshold: defaults.NotFoundSimilarity,
		logger:    slog.Default(),
		baselines: make(map[string][]Baseline),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calibrate fetches up to two random missing resources in the directory of
// req and caches them. A directory already calibrated is not fetched again.
func (c *Calibrator) Calibrate(ctx context.Context, req mutation.Request) ([]Baseline, error) {
	key := dirKey(req.Scheme(), req.Host(), req.DirPath())

	c.mu.RLock()
	cached, ok := c.baselines[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var out []Baseline
	for _, filename := range randomFilenames(req.Filename()) {
		probeReq, err := mutation.NewRequest(http.MethodGet,
			req.Scheme()+"://"+req.Host()+req.DirPath()+filename, nil, req.Header())
		if err != nil {
			return nil, err
		}
		resp, err := c.fetch.SendRequest(ctx, probeReq, false)
		if err != nil {
			c.logger.Debug("calibration request failed",
				slog.String("url", probeReq.String()),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, Baseline{
			URL:         probeReq.String(),
			StatusCode:  resp.StatusCode,
			Fingerprint: compare.Fingerprint(resp.Body),
			Body:        resp.Body,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoBaseline, key)
	}

	c.mu.Lock()
	c.baselines[key] = out
	c.mu.Unlock()
	return out, nil
}

// IsNotFound reports whether resp is the site's not-found page. Responses
// from a directory that was never calibrated are judged by status alone.
func (c *Calibrator) IsNotFound(resp *probe.Response) bool {
	if resp == nil {
		return false
	}
	if resp.StatusCode == http.StatusNotFound {
		return true
	}

	u, err := url.Parse(resp.URL)
	if err != nil {
		return false
	}
	dir := u.Path[:strings.LastIndexByte(u.Path, '/')+1]
	if dir == "" {
		dir = "/"
	}

	c.mu.RLock()
	baselines := c.baselines[dirKey(u.Scheme, u.Host, dir)]
	c.mu.RUnlock()

	fp := compare.Fingerprint(resp.Body)
	for _, b := range baselines {
		if b.Fingerprint == fp || compare.AtLeast(b.Body, resp.Body, c.threshold) {
			return true
		}
	}
	return false
}

func dirKey(scheme, host, dir string) string {
	return strings.ToLower(scheme+"://"+host) + dir
}

// randomFilenames returns missing-resource names shaped like filename: one
// with the same extension and one without any.
func randomFilenames(filename string) []string {
	names := []string{randomString(12)}
	if _, _, ext, ok := mutation.SplitFilename(filename); ok && ext != "" {
		names = append([]string{randomString(12) + "." + ext}, names...)
	}
	return names
}

func randomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))

	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = charset[0]
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return string(result)
}
