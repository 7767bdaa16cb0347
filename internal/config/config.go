// Package config handles TOML-based configuration loading with environment
// overrides and validation. The config file is parsed as data only.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that unmarshals from TOML strings like "15s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all service configuration.
type Config struct {
	Listen    string `toml:"listen"`
	StaticDir string `toml:"static_dir"`
	Debug     bool   `toml:"debug"`

	// AllowedPostHosts are the origin-site hosts accepted by the resolve
	// API, matched by suffix.
	AllowedPostHosts []string `toml:"allowed_post_hosts"`

	Provider  Provider  `toml:"provider"`
	Fetch     Fetch     `toml:"fetch"`
	Relay     Relay     `toml:"relay"`
	RateLimit RateLimit `toml:"rate_limit"`
	CORS      CORS      `toml:"cors"`
}

// Provider configures the authenticated high-priority fetch path. The
// strategy is active only when a key is set.
type Provider struct {
	Endpoint string   `toml:"endpoint"`
	Key      string   `toml:"key"`
	Timeout  Duration `toml:"timeout"`
}

// Fetch configures the direct and relay fetch strategies.
type Fetch struct {
	DirectTimeout  Duration `toml:"direct_timeout"`
	RelayTimeout   Duration `toml:"relay_timeout"`
	DirectAttempts int      `toml:"direct_attempts"`
	RelayAttempts  int      `toml:"relay_attempts"`
	BackoffBase    Duration `toml:"backoff_base"`
	BackoffStep    Duration `toml:"backoff_step"`
	Referer        string   `toml:"referer"`

	// RelayTemplates are public relay URLs with a {url} placeholder.
	RelayTemplates []string `toml:"relay_templates"`

	// RelaySelection is one of: ordered, round-robin, random.
	RelaySelection string `toml:"relay_selection"`
}

// Relay configures the download stream relay.
type Relay struct {
	// AllowedHosts restricts relay targets to known media CDNs, matched by
	// suffix. Leaving it empty turns the service into an open relay and is
	// only acceptable behind a trusted frontend.
	AllowedHosts []string `toml:"allowed_hosts"`
}

// RateLimit configures the per-client-IP token bucket.
type RateLimit struct {
	Enabled   bool    `toml:"enabled"`
	PerSecond float64 `toml:"per_second"`
	Burst     int     `toml:"burst"`
}

// CORS configures cross-origin access. An empty origin list allows all.
type CORS struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Listen:           ":8080",
		AllowedPostHosts: []string{"instagram.com", "instagr.am"},
		Provider: Provider{
			Endpoint: "https://api.scraperapi.com",
			Timeout:  Duration(20 * time.Second),
		},
		Fetch: Fetch{
			DirectTimeout:  Duration(15 * time.Second),
			RelayTimeout:   Duration(10 * time.Second),
			DirectAttempts: 3,
			RelayAttempts:  2,
			BackoffBase:    Duration(500 * time.Millisecond),
			BackoffStep:    Duration(500 * time.Millisecond),
			Referer:        "https://www.instagram.com/",
			RelayTemplates: []string{
				"https://corsproxy.io/?{url}",
				"https://api.allorigins.win/raw?url={url}",
			},
			RelaySelection: "ordered",
		},
		Relay: Relay{
			AllowedHosts: []string{"cdninstagram.com", "fbcdn.net"},
		},
		RateLimit: RateLimit{
			Enabled:   true,
			PerSecond: 2,
			Burst:     5,
		},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reelproxy"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "reelproxy"), nil
}

// ConfigPath returns the default path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path (or the default location when path is
// empty) and merges it over the defaults, then applies environment
// overrides. A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			applyEnv(cfg)
			return cfg, cfg.Validate()
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides config values from the environment. Credentials in
// particular are usually supplied this way rather than on disk.
func applyEnv(cfg *Config) {
	if v := os.Getenv("REELPROXY_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("REELPROXY_STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("REELPROXY_PROVIDER_ENDPOINT"); v != "" {
		cfg.Provider.Endpoint = v
	}
	if v := os.Getenv("REELPROXY_PROVIDER_KEY"); v != "" {
		cfg.Provider.Key = v
	}
	if v := os.Getenv("REELPROXY_DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	validSelection := map[string]bool{
		"": true, "ordered": true, "round-robin": true, "random": true,
	}
	if !validSelection[c.Fetch.RelaySelection] {
		return fmt.Errorf("unsupported relay_selection %q (valid: ordered, round-robin, random)", c.Fetch.RelaySelection)
	}

	if c.Fetch.DirectAttempts < 1 {
		return fmt.Errorf("direct_attempts must be at least 1, got %d", c.Fetch.DirectAttempts)
	}
	if c.Fetch.RelayAttempts < 1 {
		return fmt.Errorf("relay_attempts must be at least 1, got %d", c.Fetch.RelayAttempts)
	}
	if c.Fetch.BackoffBase < 0 || c.Fetch.BackoffStep < 0 {
		return fmt.Errorf("backoff durations cannot be negative")
	}

	for _, t := range c.Fetch.RelayTemplates {
		if t == "" {
			return fmt.Errorf("relay_templates cannot contain empty entries")
		}
	}

	if c.RateLimit.Enabled && c.RateLimit.PerSecond <= 0 {
		return fmt.Errorf("rate_limit.per_second must be positive when enabled")
	}

	return nil
}
