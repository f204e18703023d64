package attackconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/waftester/mutaprobe/pkg/defaults"
)

func TestDefaultConfig_HasSaneDefaults(t *testing.T) {
	t.Parallel()
	c := DefaultConfig()
	if c.MaxCandidates != 5 {
		t.Errorf("MaxCandidates = %d, want 5", c.MaxCandidates)
	}
	if c.SimilarityThreshold != 0.85 {
		t.Errorf("SimilarityThreshold = %v, want 0.85", c.SimilarityThreshold)
	}
	if len(c.TestURLs) != 2 {
		t.Fatalf("expected 2 test URLs, got %d", len(c.TestURLs))
	}
	if c.TestURLs[1][:2] != "//" {
		t.Errorf("second test URL should be protocol-relative, got %q", c.TestURLs[1])
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate_FillsZeroValues(t *testing.T) {
	t.Parallel()
	var c Config
	if err := c.Validate(); err != nil {
		t.Fatalf("zero config should validate: %v", err)
	}
	if c.Timeout <= 0 {
		t.Error("Validate should fill Timeout")
	}
	if c.Concurrency != defaults.ConcurrencyMedium {
		t.Errorf("Concurrency = %d, want %d", c.Concurrency, defaults.ConcurrencyMedium)
	}
	if c.MaxCandidates != defaults.MaxCandidates {
		t.Errorf("MaxCandidates = %d", c.MaxCandidates)
	}
	if len(c.TestURLs) == 0 {
		t.Error("Validate should fill TestURLs")
	}
}

func TestValidate_PreservesCustomValues(t *testing.T) {
	t.Parallel()
	c := Config{
		Base:                Base{Timeout: 30 * time.Second, Concurrency: 50, UserAgent: "Custom/1.0"},
		MaxCandidates:       12,
		SimilarityThreshold: 0.5,
		TestURLs:            []string{"https://attacker.test/"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Timeout != 30*time.Second || c.Concurrency != 50 || c.UserAgent != "Custom/1.0" {
		t.Errorf("custom base values were clobbered: %+v", c.Base)
	}
	if c.MaxCandidates != 12 || c.SimilarityThreshold != 0.5 {
		t.Errorf("custom probing values were clobbered: %+v", c)
	}
	if len(c.TestURLs) != 1 {
		t.Errorf("custom TestURLs were clobbered: %v", c.TestURLs)
	}
}

func TestValidate_RejectsOutOfRange(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative concurrency", func(c *Config) { c.Concurrency = -1 }},
		{"huge concurrency", func(c *Config) { c.Concurrency = defaults.ConcurrencyMax + 1 }},
		{"negative candidates", func(c *Config) { c.MaxCandidates = -3 }},
		{"threshold above one", func(c *Config) { c.SimilarityThreshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.SimilarityThreshold = -0.1 }},
		{"blank test url", func(c *Config) { c.TestURLs = []string{"http://x/", "  "} }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := DefaultConfig()
			tt.mutate(&c)
			err := c.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNotifyFindingRecorded(t *testing.T) {
	t.Parallel()
	var b Base
	b.NotifyFindingRecorded() // nil callback must not panic

	calls := 0
	b.OnFindingRecorded = func() { calls++ }
	b.NotifyFindingRecorded()
	b.NotifyFindingRecorded()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestBaseValidate(t *testing.T) {
	var b Base
	if err := b.Validate(); err != nil {
		t.Fatalf("zero Base should validate after defaults: %v", err)
	}
	if b.Concurrency != defaults.ConcurrencyMedium {
		t.Errorf("Concurrency = %d, want %d", b.Concurrency, defaults.ConcurrencyMedium)
	}

	b = Base{Concurrency: defaults.ConcurrencyMax + 1}
	if err := b.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
