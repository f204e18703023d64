// Package openredirect audits requests for global (open) redirects.
//
// Every query parameter of a seed request is replaced in turn by each
// configured test URL. Mutants are sent without following redirects so a
// Location header stays visible, and each response goes through the
// ordered redirect signals of package redirect. Hits are kept in a local
// sink until End reports one finding per vulnerable variable.
package openredirect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/waftester/mutaprobe/pkg/attackconfig"
	"github.com/waftester/mutaprobe/pkg/finding"
	"github.com/waftester/mutaprobe/pkg/mutation"
	"github.com/waftester/mutaprobe/pkg/probe"
	"github.com/waftester/mutaprobe/pkg/redirect"
)

const (
	// Plugin is the identity findings are reported under.
	Plugin = "global_redirect"
	// Category is the repository category for redirect findings.
	Category = "global_redirect"
	// Name is the finding name.
	Name = "Insecure redirection"
)

// ErrNoTransport is returned by NewScanner when no transport is given.
var ErrNoTransport = errors.New("openredirect: nil transport")

// Transport produces send functions with a fixed redirect policy.
// *httpclient.Sender implements it.
type Transport interface {
	Func(followRedirects bool) probe.SendFunc
}

// Result summarizes one Audit call.
type Result struct {
	Seed     string            `json:"seed"`
	Mutants  int               `json:"mutants"`
	Findings []finding.Finding `json:"findings,omitempty"`
	Stats    probe.Stats       `json:"-"`
	Duration time.Duration     `json:"duration"`
}

// Scanner runs redirect audits. One Scanner accumulates findings across
// Audit calls until End. Audit may be called from several goroutines.
type Scanner struct {
	config     attackconfig.Config
	transport  Transport
	dispatcher *probe.Dispatcher
	classifier *redirect.Classifier
	logger     *slog.Logger
	probeOpts  []probe.Option

	sink finding.Sink

	mu       sync.Mutex
	reported map[string]struct{}
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a custom structured logger for the scanner.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithClassifier replaces the default redirect classifier.
func WithClassifier(c *redirect.Classifier) Option {
	return func(s *Scanner) { s.classifier = c }
}

// WithProbeOptions passes options to the underlying dispatcher.
func WithProbeOptions(opts ...probe.Option) Option {
	return func(s *Scanner) { s.probeOpts = append(s.probeOpts, opts...) }
}

// NewScanner validates cfg and builds a scanner sending through t.
func NewScanner(cfg attackconfig.Config, t Transport, opts ...Option) (*Scanner, error) {
	if t == nil {
		return nil, ErrNoTransport
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scanner{
		config:    cfg,
		transport: t,
		logger:    slog.Default(),
		reported:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.classifier == nil {
		s.classifier = redirect.New(redirect.WithLogger(s.logger))
	}

	d, err := probe.New(cfg.Base, append([]probe.Option{probe.WithLogger(s.logger)}, s.probeOpts...)...)
	if err != nil {
		return nil, err
	}
	s.dispatcher = d
	return s, nil
}

// Audit tests every parameter of seed against the configured test URLs.
// A seed without query parameters yields an empty result.
func (s *Scanner) Audit(ctx context.Context, seed mutation.Request) (Result, error) {
	start := time.Now()
	res := Result{Seed: seed.String()}

	mutants, err := mutation.ForFixedValues(seed, s.config.TestURLs, mutation.AllParameters())
	if err != nil {
		return res, err
	}
	res.Mutants = len(mutants)
	if len(mutants) == 0 {
		s.logger.Debug("openredirect: no parameters to audit", slog.String("url", res.Seed))
		return res, nil
	}

	stats, err := s.dispatcher.Run(ctx, s.transport.Func(false), mutants, func(m *mutation.Mutant, resp *probe.Response) {
		if f, ok := s.analyze(m, resp); ok {
			res.Findings = append(res.Findings, f)
		}
	})
	res.Stats = stats
	res.Duration = time.Since(start)

	s.logger.Info("openredirect: audit finished",
		slog.String("url", res.Seed),
		slog.Int("mutants", res.Mutants),
		slog.Int("failed", stats.Failed),
		slog.Int("findings", len(res.Findings)))
	return res, err
}

func (s *Scanner) analyze(m *mutation.Mutant, resp *probe.Response) (finding.Finding, bool) {
	signal, ok := s.classifier.Evaluate(resp, s.config.TestURLs)
	if !ok {
		return finding.Finding{}, false
	}

	f := finding.New(finding.Redirect, finding.Medium, Name,
		"Global redirect was found at: "+m.FoundAt(), m, resp)
	f.Plugin = Plugin
	f.Evidence = signal
	f.Remediation = redirect.Remediation(signal)

	key := m.Request().Host() + m.Request().Path() + "|" + m.Variable()
	s.mu.Lock()
	if _, dup := s.reported[key]; dup {
		s.mu.Unlock()
		return finding.Finding{}, false
	}
	s.reported[key] = struct{}{}
	s.sink.Add(f)
	s.config.NotifyFindingRecorded()
	s.mu.Unlock()

	s.logger.Debug("openredirect: redirect found",
		slog.String("url", f.URL),
		slog.String("variable", f.Variable),
		slog.String("signal", signal))
	return f, true
}

// Findings returns every finding recorded since the last End.
func (s *Scanner) Findings() []finding.Finding {
	return s.sink.All()
}

// End appends one finding per vulnerable variable to repo, clears the
// scanner's sink, and returns what was reported.
func (s *Scanner) End(repo finding.Repository) ([]finding.Finding, error) {
	unique := s.sink.UniqueBy(finding.ByVariable)
	for _, f := range unique {
		if err := repo.Append(Plugin, Category, f); err != nil {
			return nil, fmt.Errorf("openredirect: report %s: %w", f.Variable, err)
		}
	}
	s.sink.Reset()
	s.mu.Lock()
	clear(s.reported)
	s.mu.Unlock()
	return unique, nil
}
