package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/waftester/mutaprobe/pkg/attackconfig"
	"github.com/waftester/mutaprobe/pkg/defaults"
	"github.com/waftester/mutaprobe/pkg/duration"
	"github.com/waftester/mutaprobe/pkg/httpclient"
	"github.com/waftester/mutaprobe/pkg/lexicon"
	"github.com/waftester/mutaprobe/pkg/mutation"
	"github.com/waftester/mutaprobe/pkg/mutation/evasion"
)

const (
	configBaseName = defaults.ToolName
	envPrefix      = "MUTAPROBE"

	// Flag names double as config keys unless a key is listed separately.
	flagConfig         = "config"
	flagConcurrency    = "concurrency"
	flagRateLimit      = "rate-limit"
	flagTimeout        = "timeout"
	flagUserAgent      = "user-agent"
	flagProxy          = "proxy"
	flagInsecure       = "insecure"
	flagMaxCandidates  = "max-candidates"
	flagSimilarity     = "similarity"
	flagTestURLs       = "test-url"
	flagEvasions       = "evasion"
	flagLexicon        = "lexicon"
	flagHostMaxErrors  = "host-max-errors"
	flagJSON           = "json"
	flagNoColor        = "no-color"
	flagSilent         = "silent"
	flagMetricsAddr    = "metrics-addr"
	flagOTLPEndpoint   = "otlp-endpoint"
	flagOTLPInsecure   = "otlp-insecure"
	flagLogLevel       = "log-level"
	flagVerbose        = "verbose"
	flagLogFile        = "log-file"
	flagMethod         = "method"
	flagData           = "data"
	flagHeader         = "header"
	keyTestURLs        = "test_urls"
	keyEvasions        = "evasions"
	keyLogLevel        = "log.level"
	keyLogVerbose      = "log.verbose"
	keyLogFile         = "log.filename"
	keyLogMaxSize      = "log.max_size"
	keyLogMaxBackups   = "log.max_backups"
	keyLogMaxAge       = "log.max_age"
	keyLogCompress     = "log.compress"
	defaultLogMaxSize  = 10
	defaultLogMaxAge   = 28
	defaultLogBackups  = 3
	defaultLogCompress = true
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configBaseName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(flagConcurrency, defaults.ConcurrencyMedium)
	v.SetDefault(flagRateLimit, defaults.RateLimit)
	v.SetDefault(flagTimeout, duration.HTTPScanning)
	v.SetDefault(flagUserAgent, defaults.UserAgent)
	v.SetDefault(flagInsecure, true)
	v.SetDefault(flagMaxCandidates, defaults.MaxCandidates)
	v.SetDefault(flagSimilarity, defaults.SimilarityThreshold)
	v.SetDefault(keyTestURLs, defaults.TestURLs())
	v.SetDefault(keyEvasions, []string{})

	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogMaxSize, defaultLogMaxSize)
	v.SetDefault(keyLogMaxBackups, defaultLogBackups)
	v.SetDefault(keyLogMaxAge, defaultLogMaxAge)
	v.SetDefault(keyLogCompress, defaultLogCompress)
	return v
}

// readConfig loads path, or mutaprobe.yaml from the working directory when
// path is empty. Only an explicitly named file is required to exist.
func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// bindFlag wires a flag to a viper key so config and env values feed it.
func bindFlag(v *viper.Viper, flags *pflag.FlagSet, name, key string) {
	if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %q: %v", name, err))
	}
}

// engineConfig assembles the validated probe engine configuration.
func engineConfig(v *viper.Viper) (attackconfig.Config, error) {
	cfg := attackconfig.DefaultConfig()
	cfg.Concurrency = v.GetInt(flagConcurrency)
	cfg.RateLimit = v.GetInt(flagRateLimit)
	cfg.Timeout = v.GetDuration(flagTimeout)
	cfg.UserAgent = v.GetString(flagUserAgent)
	cfg.MaxCandidates = v.GetInt(flagMaxCandidates)
	cfg.SimilarityThreshold = v.GetFloat64(flagSimilarity)
	cfg.TestURLs = v.GetStringSlice(keyTestURLs)
	cfg.Evasions = v.GetStringSlice(keyEvasions)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newSender builds the transport for cfg.
func newSender(v *viper.Viper, cfg attackconfig.Config) (*httpclient.Sender, error) {
	evs, err := evasion.Resolve(cfg.Evasions)
	if err != nil {
		return nil, err
	}
	client, err := httpclient.New(httpclient.Config{
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: v.GetBool(flagInsecure),
		Proxy:              v.GetString(flagProxy),
		MaxConnsPerHost:    cfg.Concurrency,
	})
	if err != nil {
		return nil, err
	}
	return httpclient.NewSender(client,
		httpclient.WithUserAgent(cfg.UserAgent),
		httpclient.WithEvasions(evs...))
}

// newExpander loads the lexicon named by --lexicon or the embedded one.
func newExpander(v *viper.Viper) (*lexicon.Expander, error) {
	var (
		p   *lexicon.StaticProvider
		err error
	)
	if path := v.GetString(flagLexicon); path != "" {
		p, err = lexicon.LoadProvider(path)
	} else {
		p, err = lexicon.DefaultProvider()
	}
	if err != nil {
		return nil, err
	}
	return lexicon.NewExpander(p), nil
}

// seedRequest builds a seed from a target URL and the request flags.
func seedRequest(method, target, data string, headers []string) (mutation.Request, error) {
	h := make(http.Header)
	for _, raw := range headers {
		name, value, ok := strings.Cut(raw, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return mutation.Request{}, fmt.Errorf("invalid header %q, want \"Name: value\"", raw)
		}
		h.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	var body []byte
	if data != "" {
		body = []byte(data)
	}
	return mutation.NewRequest(method, target, body, h)
}
