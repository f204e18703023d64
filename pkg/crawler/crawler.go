// Package crawler discovers resources by replacing the words of a known
// request with related words.
//
// The filename stem and every query parameter value of the seed request
// are expanded through a lexicon. Each related word becomes a mutant, and
// a mutant whose response is neither the site's not-found page nor a copy
// of the seed's own response is a newly reachable resource.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/waftester/mutaprobe/pkg/attackconfig"
	"github.com/waftester/mutaprobe/pkg/calibration"
	"github.com/waftester/mutaprobe/pkg/discovery"
	"github.com/waftester/mutaprobe/pkg/finding"
	"github.com/waftester/mutaprobe/pkg/mutation"
	"github.com/waftester/mutaprobe/pkg/probe"
)

const (
	// Plugin is the identity findings are reported under.
	Plugin = "wordnet"
	// Category is the repository category for discovered resources.
	Category = "discovery"
	// Name is the finding name.
	Name = "New resource"
)

var (
	// ErrNoTransport is returned by NewCrawler when no transport is given.
	ErrNoTransport = errors.New("crawler: nil transport")
	// ErrNoExpander is returned by NewCrawler when no expander is given.
	ErrNoExpander = errors.New("crawler: nil expander")
)

// Transport sends requests. *httpclient.Sender implements it.
type Transport interface {
	SendRequest(ctx context.Context, req mutation.Request, followRedirects bool) (*probe.Response, error)
	Func(followRedirects bool) probe.SendFunc
}

// Expander returns words related to word. *lexicon.Expander implements it.
type Expander interface {
	Expand(word string, maxResults int) []string
}

// Result summarizes one Crawl call.
type Result struct {
	Seed    string `json:"seed"`
	Mutants int    `json:"mutants"`

	// Discovered holds the mutated requests that reached new content, in
	// the order their responses were analyzed.
	Discovered []mutation.Request `json:"-"`

	// Links are in-scope URLs referenced by discovered responses.
	Links []string `json:"links,omitempty"`

	Findings []finding.Finding `json:"findings,omitempty"`
	Stats    probe.Stats       `json:"-"`
	Duration time.Duration     `json:"duration"`
}

// URLs returns the discovered request URLs.
func (r Result) URLs() []string {
	out := make([]string, 0, len(r.Discovered))
	for _, req := range r.Discovered {
		out = append(out, req.String())
	}
	return out
}

// Crawler runs word-expansion discovery rounds.
type Crawler struct {
	config     attackconfig.Config
	transport  Transport
	expander   Expander
	dispatcher *probe.Dispatcher
	calibrator *calibration.Calibrator
	classifier *discovery.Classifier
	notFound   discovery.NotFoundDetector
	logger     *slog.Logger
	probeOpts  []probe.Option

	sink finding.Sink
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets a custom structured logger for the crawler.
func WithLogger(l *slog.Logger) Option {
	return func(c *Crawler) { c.logger = l }
}

// WithNotFoundDetector replaces the calibrating 404 detector.
func WithNotFoundDetector(nf discovery.NotFoundDetector) Option {
	return func(c *Crawler) { c.notFound = nf }
}

// WithProbeOptions passes options to the underlying dispatcher.
func WithProbeOptions(opts ...probe.Option) Option {
	return func(c *Crawler) { c.probeOpts = append(c.probeOpts, opts...) }
}

// NewCrawler validates cfg and builds a crawler.
func NewCrawler(cfg attackconfig.Config, t Transport, exp Expander, opts ...Option) (*Crawler, error) {
	if t == nil {
		return nil, ErrNoTransport
	}
	if exp == nil {
		return nil, ErrNoExpander
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Crawler{
		config:    cfg,
		transport: t,
		expander:  exp,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notFound == nil {
		c.calibrator = calibration.New(t, calibration.WithLogger(c.logger))
		c.notFound = c.calibrator
	}
	c.classifier = discovery.New(c.notFound, cfg.SimilarityThreshold)

	d, err := probe.New(cfg.Base, append([]probe.Option{probe.WithLogger(c.logger)}, c.probeOpts...)...)
	if err != nil {
		return nil, err
	}
	c.dispatcher = d
	return c, nil
}

// Crawl sends seed as the baseline, then probes every related-word mutant
// of it.
func (c *Crawler) Crawl(ctx context.Context, seed mutation.Request) (Result, error) {
	start := time.Now()
	res := Result{Seed: seed.String()}

	baseline, err := c.transport.SendRequest(ctx, seed, true)
	if err != nil {
		return res, fmt.Errorf("crawler: baseline %s: %w", res.Seed, err)
	}
	if c.calibrator != nil {
		if _, err := c.calibrator.Calibrate(ctx, seed); err != nil {
			c.logger.Warn("crawler: calibration failed, falling back to status codes",
				slog.String("url", res.Seed),
				slog.String("error", err.Error()))
		}
	}

	mutants, err := c.Mutants(ctx, seed)
	if err != nil {
		return res, err
	}
	res.Mutants = len(mutants)
	if len(mutants) == 0 {
		c.logger.Debug("crawler: no related words", slog.String("url", res.Seed))
		return res, nil
	}

	base, _ := url.Parse(res.Seed)
	seenLinks := make(map[string]struct{})
	seenReqs := make(map[string]struct{})

	stats, err := probe.RunPaired(ctx, c.dispatcher, c.transport.Func(true), probe.PairsWith(baseline, mutants),
		func(baseline *probe.Response, m *mutation.Mutant, resp *probe.Response) {
			if !c.classifier.IsNewResource(baseline, resp) {
				return
			}
			req := m.Request()
			if _, dup := seenReqs[req.String()]; dup {
				return
			}
			seenReqs[req.String()] = struct{}{}
			res.Discovered = append(res.Discovered, req)

			f := finding.New(finding.Discovery, finding.Info, Name,
				"A new resource was found at: "+m.FoundAt(), m, resp)
			f.Plugin = Plugin
			f.Evidence = fmt.Sprintf("status %d, %d bytes", resp.StatusCode, len(resp.Body))
			c.sink.Add(f)
			res.Findings = append(res.Findings, f)
			c.config.NotifyFindingRecorded()

			for _, link := range extractLinks(resp, base) {
				if _, dup := seenLinks[link]; dup {
					continue
				}
				seenLinks[link] = struct{}{}
				res.Links = append(res.Links, link)
			}
		})
	res.Stats = stats
	res.Duration = time.Since(start)

	c.logger.Info("crawler: round finished",
		slog.String("url", res.Seed),
		slog.Int("mutants", res.Mutants),
		slog.Int("failed", stats.Failed),
		slog.Int("discovered", len(res.Discovered)))
	return res, err
}

// Mutants expands the filename stem and every query parameter occurrence
// of seed and returns the mutants: filename first, then parameters in
// seed order.
func (c *Crawler) Mutants(ctx context.Context, seed mutation.Request) ([]*mutation.Mutant, error) {
	type job struct {
		word  string
		build func(cands []string) ([]*mutation.Mutant, error)
	}

	var jobs []job
	if fn := seed.Filename(); fn != "" {
		stem, _, _, _ := mutation.SplitFilename(fn)
		jobs = append(jobs, job{word: stem, build: func(cands []string) ([]*mutation.Mutant, error) {
			return mutation.ForPathFilename(seed, cands), nil
		}})
	}
	for _, p := range seed.Query() {
		for i, v := range p.Values {
			name, idx := p.Name, i
			jobs = append(jobs, job{word: v, build: func(cands []string) ([]*mutation.Mutant, error) {
				return mutation.ForQueryParameter(seed, name, idx, cands)
			}})
		}
	}

	results := make([][]*mutation.Mutant, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.dispatcher.Concurrency())
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cands := c.expander.Expand(j.word, c.config.MaxCandidates)
			ms, err := j.build(cands)
			if err != nil {
				return err
			}
			results[i] = ms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []*mutation.Mutant
	for _, ms := range results {
		out = append(out, ms...)
	}
	return out, nil
}

// Findings returns every finding recorded since the last End.
func (c *Crawler) Findings() []finding.Finding {
	return c.sink.All()
}

// End appends one finding per discovered URL to repo, clears the sink, and
// returns what was reported.
func (c *Crawler) End(repo finding.Repository) ([]finding.Finding, error) {
	unique := c.sink.UniqueBy(finding.ByURL)
	for _, f := range unique {
		if err := repo.Append(Plugin, Category, f); err != nil {
			return nil, fmt.Errorf("crawler: report %s: %w", f.URL, err)
		}
	}
	c.sink.Reset()
	return unique, nil
}
