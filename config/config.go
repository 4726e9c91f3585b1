// Package config provides YAML configuration parsing for the todo API.
//
// This package enables running the API as a standalone binary with a
// configuration file, as an alternative to the programmatic approach.
//
// Example configuration:
//
//	title: Team Todos
//	port: 3000
//	shutdown_timeout: 10s
//	allowed_origins: ["http://localhost:5173"]
//
//	rate_limit:
//	  requests_per_second: 20
//	  burst: 40
//
//	seed:
//	  - text: Learn Go
//	    done: true
//	  - text: Build a REST API
//
//	profile:
//	  user:
//	    name: ${USER:-Your Name}
//	  rating: 7.5/10
package config

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort            = 3000
	defaultShutdownTimeout = 10 * time.Second
	minShutdownTimeout     = 1 * time.Second
)

// Config is the root configuration structure.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "Todo API" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 3000.
	Port int `yaml:"port"`

	// ShutdownTimeout bounds how long the binary waits for a graceful
	// shutdown. Defaults to 10s.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// RateLimit enables per-client rate limiting when set.
	RateLimit *RateLimitConfig `yaml:"rate_limit"`

	// Seed lists the todos loaded on start. When the key is absent the four
	// sample todos are used; an explicit empty list starts empty.
	Seed []SeedConfig `yaml:"seed"`

	// Profile overrides the object served at /api/wrapped.
	Profile *ProfileConfig `yaml:"profile"`
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	// RequestsPerSecond is the refill rate. Must be positive.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the bucket size. Defaults to RequestsPerSecond rounded up.
	Burst int `yaml:"burst"`
}

// SeedConfig is one initial todo.
type SeedConfig struct {
	Text string `yaml:"text"`
	Done bool   `yaml:"done"`
}

// ProfileConfig is the "wrapped" profile. Values support environment
// variable substitution.
type ProfileConfig struct {
	User struct {
		Name string `yaml:"name"`
	} `yaml:"user"`
	Rating         string `yaml:"rating"`
	Mood           string `yaml:"mood"`
	MoodEmoji      string `yaml:"mood_emoji"`
	FavoriteSong   string `yaml:"favorite_song"`
	FavoriteArtist string `yaml:"favorite_artist"`
	FavoriteShow   string `yaml:"favorite_show"`
	MemeURL        string `yaml:"meme_url"`
	MemeCaption    string `yaml:"meme_caption"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the title, allowed origins, seed
// texts and profile values. Defaults are applied for Port (3000),
// ShutdownTimeout (10s) and the rate-limit burst.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(defaultShutdownTimeout)
	}
	if cfg.RateLimit != nil && cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = int(math.Ceil(cfg.RateLimit.RequestsPerSecond))
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Port:            defaultPort,
		ShutdownTimeout: Duration(defaultShutdownTimeout),
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.ShutdownTimeout.Duration() < minShutdownTimeout {
		return fmt.Errorf("shutdown_timeout must be at least %s, got %s",
			minShutdownTimeout, c.ShutdownTimeout.Duration())
	}

	title, err := expandEnvVars(c.Title)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	c.Title = title

	for i, origin := range c.AllowedOrigins {
		expanded, err := expandEnvVars(origin)
		if err != nil {
			return fmt.Errorf("allowed_origins[%d]: %w", i, err)
		}
		if strings.TrimSpace(expanded) == "" {
			return fmt.Errorf("allowed_origins[%d]: origin cannot be empty", i)
		}
		c.AllowedOrigins[i] = expanded
	}

	if rl := c.RateLimit; rl != nil {
		if rl.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit: requests_per_second must be positive, got %g", rl.RequestsPerSecond)
		}
		if rl.Burst < 1 {
			return fmt.Errorf("rate_limit: burst must be at least 1, got %d", rl.Burst)
		}
	}

	for i := range c.Seed {
		s := &c.Seed[i]
		expanded, err := expandEnvVars(s.Text)
		if err != nil {
			return fmt.Errorf("seed[%d]: text: %w", i, err)
		}
		s.Text = strings.TrimSpace(expanded)
		if s.Text == "" {
			return fmt.Errorf("seed[%d]: text is required", i)
		}
	}

	if p := c.Profile; p != nil {
		fields := []struct {
			name string
			val  *string
		}{
			{"user.name", &p.User.Name},
			{"rating", &p.Rating},
			{"mood", &p.Mood},
			{"mood_emoji", &p.MoodEmoji},
			{"favorite_song", &p.FavoriteSong},
			{"favorite_artist", &p.FavoriteArtist},
			{"favorite_show", &p.FavoriteShow},
			{"meme_url", &p.MemeURL},
			{"meme_caption", &p.MemeCaption},
		}
		for _, f := range fields {
			expanded, err := expandEnvVars(*f.val)
			if err != nil {
				return fmt.Errorf("profile.%s: %w", f.name, err)
			}
			*f.val = expanded
		}
	}

	return nil
}
