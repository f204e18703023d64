package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/waftester/mutaprobe/pkg/defaults"
	"github.com/waftester/mutaprobe/pkg/duration"
	"github.com/waftester/mutaprobe/pkg/finding"
	"github.com/waftester/mutaprobe/pkg/mutation"
	"github.com/waftester/mutaprobe/pkg/mutation/evasion"
	"github.com/waftester/mutaprobe/pkg/probe"
	"github.com/waftester/mutaprobe/pkg/ui"
)

const rootLongDescription = `mutaprobe derives many variant requests from one seed request, sends
them concurrently and classifies every response.

  redirect   replace every query parameter with off-site URLs and detect
             redirects through Location, Refresh, meta refresh or script
  crawl      replace the filename and parameter values with related words
             and report resources that were not reachable before
  expand     print the related words the crawl would try

Configuration is read from flags, MUTAPROBE_* environment variables and
mutaprobe.yaml in the working directory (or --config).`

// app holds state shared by the commands of one invocation.
type app struct {
	v        *viper.Viper
	logger   *slog.Logger
	metrics  *probe.Metrics
	registry *prometheus.Registry
	closers  []shutdownFunc
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper(), logger: slog.Default()}

	cmd := &cobra.Command{
		Use:           defaults.ToolName,
		Short:         "Mutation-based web probe engine",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	configureRootFlags(a.v, cmd)

	cmd.AddCommand(
		newRedirectCmd(a),
		newCrawlCmd(a),
		newExpandCmd(a),
		newReportCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func configureRootFlags(v *viper.Viper, cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String(flagConfig, "", "config file (default ./mutaprobe.yaml)")

	f.IntP(flagConcurrency, "c", defaults.ConcurrencyMedium, "parallel probes")
	f.Int(flagRateLimit, defaults.RateLimit, "maximum requests per second")
	f.Duration(flagTimeout, duration.HTTPScanning, "per-request timeout")
	f.String(flagUserAgent, defaults.UserAgent, "User-Agent header")
	f.String(flagProxy, "", "proxy URL (http, https, socks5, socks5h)")
	f.Bool(flagInsecure, true, "skip TLS certificate verification")
	f.Int(flagMaxCandidates, defaults.MaxCandidates, "related words tried per seed word")
	f.Float64(flagSimilarity, defaults.SimilarityThreshold, "body similarity below which content counts as new")
	f.StringSlice(flagTestURLs, defaults.TestURLs(), "off-site redirect targets, compared as prefixes")
	f.StringSlice(flagEvasions, nil, "request evasions to apply ("+strings.Join(evasion.Names(), ", ")+")")
	f.Int(flagHostMaxErrors, 0, "skip a host after this many consecutive network errors (0 sends every mutant)")
	f.String(flagLexicon, "", "YAML sense graph replacing the embedded lexicon")

	f.Bool(flagJSON, false, "write findings as JSON lines to stdout")
	f.Bool(flagNoColor, false, "disable colored output")
	f.BoolP(flagSilent, "s", false, "suppress console output on stderr")

	f.String(flagMetricsAddr, "", "serve Prometheus metrics on this address")
	f.String(flagOTLPEndpoint, "", "export traces to this OTLP/gRPC endpoint")
	f.Bool(flagOTLPInsecure, false, "use a plaintext connection to the OTLP endpoint")

	f.String(flagLogLevel, "info", "log level (debug, info, warn, error)")
	f.BoolP(flagVerbose, "v", false, "debug logging")
	f.String(flagLogFile, "", "write logs to a rotated file instead of stderr")

	for _, name := range []string{
		flagConcurrency, flagRateLimit, flagTimeout, flagUserAgent, flagProxy,
		flagInsecure, flagMaxCandidates, flagSimilarity, flagLexicon, flagHostMaxErrors,
		flagJSON, flagNoColor, flagSilent, flagMetricsAddr, flagOTLPEndpoint, flagOTLPInsecure,
	} {
		bindFlag(v, f, name, name)
	}
	bindFlag(v, f, flagTestURLs, keyTestURLs)
	bindFlag(v, f, flagEvasions, keyEvasions)
	bindFlag(v, f, flagLogLevel, keyLogLevel)
	bindFlag(v, f, flagVerbose, keyLogVerbose)
	bindFlag(v, f, flagLogFile, keyLogFile)
}

func (a *app) setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString(flagConfig)
	if err := readConfig(a.v, configPath); err != nil {
		return err
	}

	logger, closer := configureLogger(a.v, cmd.ErrOrStderr())
	a.logger = logger
	if closer != nil {
		a.closers = append(a.closers, func(context.Context) error { return closer.Close() })
	}

	ui.SetOutput(cmd.ErrOrStderr())
	ui.SetNoColor(a.v.GetBool(flagNoColor))
	ui.SetSilent(a.v.GetBool(flagSilent) || a.v.GetBool(flagJSON))

	if addr := a.v.GetString(flagMetricsAddr); addr != "" {
		m, reg, stop, err := startMetrics(addr, logger)
		if err != nil {
			return err
		}
		a.metrics, a.registry = m, reg
		a.closers = append(a.closers, stop)
	}
	if endpoint := a.v.GetString(flagOTLPEndpoint); endpoint != "" {
		stop, err := startTracing(endpoint, a.v.GetBool(flagOTLPInsecure))
		if err != nil {
			return err
		}
		a.closers = append(a.closers, stop)
	}
	return nil
}

// teardown releases telemetry and log files in reverse order.
func (a *app) teardown() error {
	ctx, cancel := context.WithTimeout(context.Background(), duration.Shutdown)
	defer cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) probeOptions() []probe.Option {
	opts := []probe.Option{
		probe.WithLogger(a.logger),
		probe.WithMaxHostErrors(a.v.GetInt(flagHostMaxErrors)),
	}
	if a.metrics != nil {
		opts = append(opts, probe.WithMetrics(a.metrics))
	}
	return opts
}

// repository returns where End writes findings: JSON lines on stdout with
// --json, memory otherwise.
func (a *app) repository(stdout io.Writer) (finding.Repository, func() []finding.Finding) {
	if a.v.GetBool(flagJSON) {
		// Hide Close so the repository never closes stdout.
		return finding.NewJSONLRepository(struct{ io.Writer }{stdout}), func() []finding.Finding { return nil }
	}
	mem := finding.NewMemoryRepository()
	return mem, func() []finding.Finding { return mem.Findings("") }
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagMethod, "X", "GET", "seed request method")
	cmd.Flags().StringP(flagData, "d", "", "seed request body")
	cmd.Flags().StringArrayP(flagHeader, "H", nil, "seed request header \"Name: value\" (repeatable)")
}

func seedsFromArgs(cmd *cobra.Command, args []string) ([]mutation.Request, error) {
	method, _ := cmd.Flags().GetString(flagMethod)
	data, _ := cmd.Flags().GetString(flagData)
	headers, _ := cmd.Flags().GetStringArray(flagHeader)

	seeds := make([]mutation.Request, 0, len(args))
	for _, target := range args {
		req, err := seedRequest(method, target, data, headers)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, req)
	}
	return seeds, nil
}
