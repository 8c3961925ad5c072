// Package config defines the YAML run configuration: which providers score,
// how the feed loop terminates, and how the browser session is launched.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/feedwise/feedwise/pkg/policy"
)

// ProviderMode selects which scoring providers participate in a run.
type ProviderMode string

const (
	// ModeCloud scores with the cloud provider only
	ModeCloud ProviderMode = "cloud"
	// ModeLocal scores with the local provider only
	ModeLocal ProviderMode = "local"
	// ModeBoth scores with the cloud provider and falls back to local
	ModeBoth ProviderMode = "both"
)

// Config is the full run configuration.
type Config struct {
	// Provider selects the scoring provider chain
	Provider ProviderMode `yaml:"provider"`

	// Cloud configures the primary (hosted) provider
	Cloud ProviderConfig `yaml:"cloud"`

	// Local configures the fallback (self-hosted) provider
	Local ProviderConfig `yaml:"local"`

	// Feed configures the feed loop
	Feed FeedConfig `yaml:"feed"`

	// RateLimit configures the shared scoring-call budget
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Thresholds are the score-tier boundaries
	Thresholds policy.Thresholds `yaml:"thresholds"`

	// Browser configures the persistent browser session
	Browser BrowserConfig `yaml:"browser"`
}

// ProviderConfig holds the connection settings for one LLM provider.
type ProviderConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// FeedConfig controls the feed loop's pacing and termination.
type FeedConfig struct {
	// URL is the feed page the loop operates on
	URL string `yaml:"url"`

	// MaxItems ends the run after this many processed items
	MaxItems int `yaml:"max_items"`

	// MaxScrolls bounds page scrolls per run
	MaxScrolls int `yaml:"max_scrolls"`

	// ScrollRetries is how many consecutive empty passes are tolerated
	// before the feed is considered exhausted
	ScrollRetries int `yaml:"scroll_retries"`

	// ScrollSettle is the base wait after each scroll
	ScrollSettle time.Duration `yaml:"scroll_settle"`

	// MaxConsecutiveErrors aborts the run when this many item pipelines
	// fail back to back
	MaxConsecutiveErrors int `yaml:"max_consecutive_errors"`

	// CountFailures makes failed items count toward MaxItems
	CountFailures bool `yaml:"count_failures"`

	// DelayMin and DelayMax bound the randomized pause between actions
	DelayMin time.Duration `yaml:"delay_min"`
	DelayMax time.Duration `yaml:"delay_max"`

	// SearchTerms seed the recommendation signal before the loop starts
	SearchTerms []string `yaml:"search_terms"`
}

// RateLimitConfig bounds scoring calls across all providers.
type RateLimitConfig struct {
	// MaxCalls per Window
	MaxCalls int `yaml:"max_calls"`

	// Window is the fixed budget window
	Window time.Duration `yaml:"window"`

	// MaxWait bounds how long a caller blocks for budget before giving up
	MaxWait time.Duration `yaml:"max_wait"`
}

// BrowserConfig controls the browser session.
type BrowserConfig struct {
	// ProfileDir is the persistent profile directory; empty means
	// ~/.feedwise/profile
	ProfileDir string `yaml:"profile_dir"`

	// Headless launches the browser without a window
	Headless bool `yaml:"headless"`
}

// DefaultConfig returns a configuration suitable for a first run: both
// providers, a 10-call/minute scoring budget, and human-paced delays.
func DefaultConfig() *Config {
	return &Config{
		Provider: ModeBoth,
		Cloud: ProviderConfig{
			Model: "gpt-4o-mini",
		},
		Local: ProviderConfig{
			Model:   "llama3.1",
			BaseURL: "http://localhost:11434",
		},
		Feed: FeedConfig{
			URL:                  "https://www.youtube.com",
			MaxItems:             50,
			MaxScrolls:           20,
			ScrollRetries:        3,
			ScrollSettle:         3 * time.Second,
			MaxConsecutiveErrors: 5,
			CountFailures:        false,
			DelayMin:             3 * time.Second,
			DelayMax:             6 * time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxCalls: 10,
			Window:   time.Minute,
			MaxWait:  90 * time.Second,
		},
		Thresholds: policy.DefaultThresholds(),
	}
}

// Load reads a YAML configuration file over the defaults. Fields absent from
// the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the run cannot proceed with.
func (c *Config) Validate() error {
	switch c.Provider {
	case ModeCloud, ModeLocal, ModeBoth:
	default:
		return fmt.Errorf("invalid provider: %q (must be 'cloud', 'local', or 'both')", c.Provider)
	}

	if c.Feed.URL == "" {
		return fmt.Errorf("feed url is required")
	}

	if c.Feed.MaxItems <= 0 {
		return fmt.Errorf("max_items must be positive")
	}

	if c.Feed.MaxScrolls <= 0 {
		return fmt.Errorf("max_scrolls must be positive")
	}

	if c.Feed.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("max_consecutive_errors must be positive")
	}

	if c.Feed.DelayMin < 0 || c.Feed.DelayMax < 0 {
		return fmt.Errorf("delays cannot be negative")
	}

	if c.Feed.DelayMax < c.Feed.DelayMin {
		return fmt.Errorf("delay_max must be >= delay_min")
	}

	if c.RateLimit.MaxCalls <= 0 {
		return fmt.Errorf("rate_limit max_calls must be positive")
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit window must be positive")
	}

	if c.RateLimit.MaxWait < 0 {
		return fmt.Errorf("rate_limit max_wait cannot be negative")
	}

	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}

	return nil
}

// ProfileDir resolves the browser profile directory, defaulting to
// ~/.feedwise/profile.
func (c *Config) ProfileDir() (string, error) {
	if c.Browser.ProfileDir != "" {
		return c.Browser.ProfileDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".feedwise", "profile"), nil
}
