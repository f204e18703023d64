package attackconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/waftester/mutaprobe/pkg/defaults"
	"github.com/waftester/mutaprobe/pkg/duration"
)

// ErrInvalidConfig indicates a configuration value is out of range.
// Callers should use errors.Is() to check for it.
var ErrInvalidConfig = errors.New("attackconfig: invalid configuration")

// Base contains transport-level fields shared across probing rounds.
type Base struct {
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	UserAgent   string        `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Concurrency int           `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	RateLimit   int           `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`

	// OnFindingRecorded is called each time a round records a finding,
	// enabling real-time progress updates in the CLI.
	OnFindingRecorded func() `json:"-" yaml:"-"`
}

// DefaultBase returns a Base with production defaults.
func DefaultBase() Base {
	return Base{
		Timeout:     duration.HTTPScanning,
		UserAgent:   defaults.UserAgent,
		Concurrency: defaults.ConcurrencyMedium,
		RateLimit:   defaults.RateLimit,
	}
}

// applyDefaults fills zero-value fields with defaults.
func (b *Base) applyDefaults() {
	if b.Timeout == 0 {
		b.Timeout = duration.HTTPScanning
	}
	if b.UserAgent == "" {
		b.UserAgent = defaults.UserAgent
	}
	if b.Concurrency == 0 {
		b.Concurrency = defaults.ConcurrencyMedium
	}
	if b.RateLimit == 0 {
		b.RateLimit = defaults.RateLimit
	}
}

// Validate fills zero values with defaults and rejects out-of-range
// transport settings. The returned error wraps ErrInvalidConfig.
func (b *Base) Validate() error {
	b.applyDefaults()
	return invalid(b.problems())
}

func (b *Base) problems() []string {
	var problems []string
	if b.Timeout < 0 {
		problems = append(problems, fmt.Sprintf("timeout %v is negative", b.Timeout))
	}
	if b.Concurrency < 0 || b.Concurrency > defaults.ConcurrencyMax {
		problems = append(problems, fmt.Sprintf("concurrency %d outside [1,%d]", b.Concurrency, defaults.ConcurrencyMax))
	}
	if b.RateLimit < 0 {
		problems = append(problems, fmt.Sprintf("rate limit %d is negative", b.RateLimit))
	}
	return problems
}

func invalid(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// NotifyFindingRecorded calls the OnFindingRecorded callback if set.
func (b *Base) NotifyFindingRecorded() {
	if b.OnFindingRecorded != nil {
		b.OnFindingRecorded()
	}
}

// Config is the configuration surface consumed by the probe engine.
type Config struct {
	Base `yaml:",inline"`

	// MaxCandidates caps the expander output per seed word.
	MaxCandidates int `json:"max_candidates,omitempty" yaml:"max_candidates,omitempty"`

	// SimilarityThreshold: a candidate body whose similarity to the
	// baseline is below this value counts as new content.
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" yaml:"similarity_threshold,omitempty"`

	// TestURLs are the off-site redirect targets, compared as literal prefixes.
	TestURLs []string `json:"test_urls,omitempty" yaml:"test_urls,omitempty"`

	// Evasions names request evasions applied right before sending.
	Evasions []string `json:"evasions,omitempty" yaml:"evasions,omitempty"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		Base:                DefaultBase(),
		MaxCandidates:       defaults.MaxCandidates,
		SimilarityThreshold: defaults.SimilarityThreshold,
		TestURLs:            defaults.TestURLs(),
	}
}

// Validate replaces zero values with defaults and rejects values that
// are out of range. The returned error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	c.Base.applyDefaults()
	if c.MaxCandidates == 0 {
		c.MaxCandidates = defaults.MaxCandidates
	}
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if len(c.TestURLs) == 0 {
		c.TestURLs = defaults.TestURLs()
	}

	problems := c.Base.problems()
	if c.MaxCandidates < 0 {
		problems = append(problems, fmt.Sprintf("max candidates %d is negative", c.MaxCandidates))
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		problems = append(problems, fmt.Sprintf("similarity threshold %.2f outside [0,1]", c.SimilarityThreshold))
	}
	for _, u := range c.TestURLs {
		if strings.TrimSpace(u) == "" {
			problems = append(problems, "empty test URL")
			break
		}
	}

	return invalid(problems)
}
