package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/waftester/mutaprobe/pkg/defaults"
	"github.com/waftester/mutaprobe/pkg/iohelper"
	"github.com/waftester/mutaprobe/pkg/mutation"
	"github.com/waftester/mutaprobe/pkg/mutation/evasion"
	"github.com/waftester/mutaprobe/pkg/probe"
)

// CorrelationHeader carries the response id on outgoing requests so
// target-side logs can be matched to findings.
const CorrelationHeader = "X-Request-Id"

// Sender is the default transport: it turns a mutation.Request into an
// HTTP round trip and returns a probe.Response.
type Sender struct {
	direct    *http.Client
	follow    *http.Client
	userAgent string
	evasions  []evasion.Evasion
	maxBody   int64
	logger    *slog.Logger
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithUserAgent overrides defaults.UserAgent.
func WithUserAgent(ua string) SenderOption {
	return func(s *Sender) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithEvasions applies evasions, in order, to every outgoing request.
func WithEvasions(evs ...evasion.Evasion) SenderOption {
	return func(s *Sender) { s.evasions = append(s.evasions, evs...) }
}

// WithMaxBody caps how much of each response body is kept.
func WithMaxBody(n int64) SenderOption {
	return func(s *Sender) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithLogger sets a custom structured logger for the sender.
func WithLogger(l *slog.Logger) SenderOption {
	return func(s *Sender) { s.logger = l }
}

// NewSender wraps client. A nil client gets one built from DefaultConfig.
// The same connection pool serves redirect-following and direct sends.
func NewSender(client *http.Client, opts ...SenderOption) (*Sender, error) {
	if client == nil {
		c, err := New(DefaultConfig())
		if err != nil {
			return nil, err
		}
		client = c
	}
	s := &Sender{
		direct:    noRedirects(client),
		follow:    following(client),
		userAgent: defaults.UserAgent,
		maxBody:   iohelper.DefaultMaxBodySize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send delivers the mutated request of m.
func (s *Sender) Send(ctx context.Context, m *mutation.Mutant, followRedirects bool) (*probe.Response, error) {
	return s.SendRequest(ctx, m.Request(), followRedirects)
}

// Func adapts Send to the dispatcher's SendFunc with a fixed redirect policy.
func (s *Sender) Func(followRedirects bool) probe.SendFunc {
	return func(ctx context.Context, m *mutation.Mutant) (*probe.Response, error) {
		return s.Send(ctx, m, followRedirects)
	}
}

// SendRequest delivers req. Transport errors are wrapped by Classify.
func (s *Sender) SendRequest(ctx context.Context, req mutation.Request, followRedirects bool) (*probe.Response, error) {
	req = evasion.Chain(req, s.evasions)
	id := uuid.NewString()

	httpReq, err := s.build(ctx, req, id)
	if err != nil {
		return nil, err
	}

	client := s.direct
	if followRedirects {
		client = s.follow
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, Classify(err)
	}
	defer iohelper.DrainAndClose(resp.Body)

	body, err := iohelper.ReadBody(resp.Body, s.maxBody)
	if err != nil {
		return nil, Classify(fmt.Errorf("read body: %w", err))
	}

	finalURL := req.String()
	if followRedirects && resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	s.logger.Debug("probe sent",
		slog.String("id", id),
		slog.String("url", finalURL),
		slog.Int("status", resp.StatusCode))

	return &probe.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		ID:         id,
		URL:        finalURL,
		Elapsed:    time.Since(start),
	}, nil
}

func (s *Sender) build(ctx context.Context, req mutation.Request, id string) (*http.Request, error) {
	var body io.Reader
	if len(req.Body()) > 0 {
		body = bytes.NewReader(req.Body())
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), req.String(), body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	if strings.Contains(httpReq.URL.Path, `\`) {
		// Backslashes must reach the server unescaped.
		httpReq.URL.Opaque = strings.ReplaceAll(httpReq.URL.EscapedPath(), "%5C", `\`)
	}

	httpReq.Header = req.Header().Clone()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", s.userAgent)
	}
	httpReq.Header.Set(CorrelationHeader, id)
	return httpReq, nil
}
