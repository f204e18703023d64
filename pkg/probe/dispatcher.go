// Package probe sends mutants through an injected transport on a fixed-size
// worker pool and hands every successful response to an analyzer callback.
//
// Analyzer callbacks never run concurrently with each other, so classifiers
// and finding sinks used from a callback need no locking of their own.
// A failed send is recorded in Stats and the batch continues.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/waftester/mutaprobe/pkg/attackconfig"
	"github.com/waftester/mutaprobe/pkg/defaults"
	"github.com/waftester/mutaprobe/pkg/hosterrors"
	"github.com/waftester/mutaprobe/pkg/mutation"
	"github.com/waftester/mutaprobe/pkg/workerpool"
)

var (
	// ErrHostFailed marks mutants skipped because their host exceeded the
	// consecutive transport failure threshold.
	ErrHostFailed = errors.New("probe: host failed")

	// ErrNilResponse is recorded when a send function returns neither a
	// response nor an error.
	ErrNilResponse = errors.New("probe: transport returned no response")

	// ErrNoSender is returned when Run is called without a send function.
	ErrNoSender = errors.New("probe: nil send function")
)

// SendFunc delivers one mutant and returns the response. The dispatcher
// treats every error the same way: record, skip analysis, continue.
type SendFunc func(ctx context.Context, m *mutation.Mutant) (*Response, error)

// ResultFunc analyzes one (mutant, response) pair.
type ResultFunc func(m *mutation.Mutant, resp *Response)

// Failure is one mutant that produced no analyzable response.
type Failure struct {
	Mutant *mutation.Mutant
	Err    error
}

// Stats summarizes one Run.
type Stats struct {
	// Total is the number of mutants given to Run.
	Total int
	// Sent counts mutants whose response reached the analyzer.
	Sent int
	// Failed counts mutants with a transport error or a failed host.
	Failed int
	// Skipped is the part of Failed that was never sent because the host
	// had already failed too often.
	Skipped int
	// Canceled counts mutants never dispatched because ctx ended.
	Canceled int
	// Failures lists every failed mutant with its reason.
	Failures []Failure
	Duration time.Duration
}

// Dispatcher runs probing rounds.
type Dispatcher struct {
	concurrency   int
	limiter       *rate.Limiter
	maxHostErrors int
	logger        *slog.Logger
	metrics       *Metrics
	tracer        trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets a custom structured logger for the dispatcher.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithMetrics records probe outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracer sets the tracer used for per-mutant spans. The default comes
// from the global otel tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithMaxHostErrors skips the remaining mutants of a host once it has
// failed n times in a row with a network error. Zero, the default, sends
// every mutant regardless of earlier failures.
func WithMaxHostErrors(n int) Option {
	return func(d *Dispatcher) { d.maxHostErrors = n }
}

// New creates a dispatcher. cfg is validated and zero values take defaults.
func New(cfg attackconfig.Base, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		concurrency: cfg.Concurrency,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
		logger:      slog.Default(),
		tracer:      otel.Tracer(defaults.ToolName + "/probe"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Concurrency returns the worker count.
func (d *Dispatcher) Concurrency() int {
	return d.concurrency
}

// Run sends every mutant and calls onResult for each successful response.
// It blocks until all dispatched work has finished. When ctx ends, queued
// mutants are not dispatched, in-flight sends complete, and their results
// are still delivered; the returned error is then ctx.Err().
func (d *Dispatcher) Run(ctx context.Context, send SendFunc, mutants []*mutation.Mutant, onResult ResultFunc) (Stats, error) {
	return d.dispatch(ctx, send, mutants, func(i int, resp *Response) {
		if onResult != nil {
			onResult(mutants[i], resp)
		}
	})
}

// Pair is one unit of paired work: a mutant and an auxiliary argument
// handed to the analyzer alongside its response.
type Pair[A any] struct {
	Aux    A
	Mutant *mutation.Mutant
}

// PairsWith pairs every mutant with the same auxiliary value.
func PairsWith[A any](aux A, mutants []*mutation.Mutant) []Pair[A] {
	out := make([]Pair[A], len(mutants))
	for i, m := range mutants {
		out[i] = Pair[A]{Aux: aux, Mutant: m}
	}
	return out
}

// RunPaired is Run for analyzers that need a second argument, such as a
// baseline response shared by every mutant of a round.
func RunPaired[A any](ctx context.Context, d *Dispatcher, send SendFunc, pairs []Pair[A], fn func(aux A, m *mutation.Mutant, resp *Response)) (Stats, error) {
	mutants := make([]*mutation.Mutant, len(pairs))
	for i, p := range pairs {
		mutants[i] = p.Mutant
	}
	return d.dispatch(ctx, send, mutants, func(i int, resp *Response) {
		if fn != nil {
			fn(pairs[i].Aux, pairs[i].Mutant, resp)
		}
	})
}

// round is the shared state of one dispatch call.
type round struct {
	d       *Dispatcher
	send    SendFunc
	hosts   *hosterrors.Cache
	deliver func(i int, resp *Response)

	// mu serializes deliver and guards stats
	mu    sync.Mutex
	stats Stats
}

func (d *Dispatcher) dispatch(ctx context.Context, send SendFunc, mutants []*mutation.Mutant, deliver func(int, *Response)) (Stats, error) {
	if send == nil {
		return Stats{Total: len(mutants)}, ErrNoSender
	}
	start := time.Now()
	r := &round{
		d:       d,
		send:    send,
		deliver: deliver,
	}
	if d.maxHostErrors > 0 {
		r.hosts = hosterrors.NewCache(d.maxHostErrors, 0)
	}
	r.stats.Total = len(mutants)

	// In-flight sends outlive cancellation of ctx; only dispatch stops.
	sendCtx := context.WithoutCancel(ctx)

	pool := workerpool.New(d.concurrency)
	d.logger.Debug("probing round started",
		slog.Int("mutants", len(mutants)),
		slog.Int("workers", pool.Cap()))
	dispatched := 0
	var runErr error
	for i, m := range mutants {
		if err := d.limiter.Wait(ctx); err != nil {
			runErr = ctx.Err()
			if runErr == nil {
				runErr = err
			}
			break
		}
		idx, mut := i, m
		if err := pool.Submit(ctx, func() { r.process(sendCtx, idx, mut) }); err != nil {
			runErr = err
			break
		}
		dispatched++
	}
	pool.Close()

	r.stats.Canceled = len(mutants) - dispatched
	r.stats.Duration = time.Since(start)
	if r.stats.Canceled > 0 {
		d.logger.Debug("probing round stopped early",
			slog.Int("dispatched", dispatched),
			slog.Int("canceled", r.stats.Canceled),
			slog.String("error", fmt.Sprint(runErr)))
	}
	if r.hosts != nil {
		if skipped, _ := r.hosts.Stats(); skipped > 0 {
			d.logger.Info("skipped mutants of failing hosts",
				slog.Int64("skipped", skipped),
				slog.Int("hosts_with_errors", r.hosts.Size()))
		}
	}
	return r.stats, runErr
}

func (r *round) process(ctx context.Context, i int, m *mutation.Mutant) {
	req := m.Request()
	host := req.Host()
	if r.hosts != nil && r.hosts.Check(host) {
		r.d.metrics.observeSkipped()
		r.fail(m, fmt.Errorf("%w: %s", ErrHostFailed, host), true)
		return
	}

	ctx, span := r.d.tracer.Start(ctx, defaults.ToolName+".probe",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method()),
			attribute.String("url", m.URL()),
			attribute.String("locus", m.Locus().String()),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := r.send(ctx, m)
	if err == nil && resp == nil {
		err = ErrNilResponse
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if r.hosts != nil && hosterrors.IsNetworkError(err) && r.hosts.MarkError(host) {
			r.d.logger.Debug("host reached failure threshold", slog.String("host", host))
		}
		r.d.logger.Debug("probe failed", slog.String("url", m.URL()), slog.String("error", err.Error()))
		r.d.metrics.observeFailed()
		r.fail(m, err, false)
		return
	}

	if r.hosts != nil {
		r.hosts.MarkSuccess(host)
	}
	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.String("response.id", resp.ID),
	)
	r.d.metrics.observeSent(time.Since(start).Seconds())
	r.deliverResult(i, resp)
}

func (r *round) fail(m *mutation.Mutant, err error, skipped bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Failed++
	if skipped {
		r.stats.Skipped++
	}
	r.stats.Failures = append(r.stats.Failures, Failure{Mutant: m, Err: err})
}

func (r *round) deliverResult(i int, resp *Response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Sent++
	r.deliver(i, resp)
	r.d.metrics.observeDelivered()
}
