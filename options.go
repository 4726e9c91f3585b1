package todoapi

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// appConfig holds mutable state during App construction.
type appConfig struct {
	title           string
	port            int
	seed            []SeedTodo
	seedSet         bool
	allowedOrigins  []string
	rateLimit       float64
	burst           int
	profile         *Profile
	logger          *slog.Logger
	changeCallbacks []func(Change)
}

// Option is a function that configures an [App] instance during construction.
//
// Option implements the functional options pattern. Options return an error
// if validation fails.
type Option func(*appConfig) error

// WithPort sets the HTTP port for the API server.
//
// Defaults to 3000 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *appConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "Todo API".
func WithTitle(title string) Option {
	return func(cfg *appConfig) error {
		cfg.title = title
		return nil
	}
}

// WithSeed replaces the todos the collection starts with on every start.
//
// Seed todos get ids 1..n in the given order. Calling WithSeed with no
// arguments starts with an empty collection. Without this option the four
// sample todos are loaded.
//
// Returns an error if any seed todo has blank text.
func WithSeed(todos ...SeedTodo) Option {
	return func(cfg *appConfig) error {
		for i, t := range todos {
			if strings.TrimSpace(t.Text) == "" {
				return fmt.Errorf("seed todo %d: text is required", i)
			}
		}
		cfg.seed = append([]SeedTodo(nil), todos...)
		cfg.seedSet = true
		return nil
	}
}

// WithAllowedOrigins restricts CORS to the given origins.
//
// Defaults to allowing any origin. Passing "*" also allows any origin.
//
// Returns an error if no origins are given or any origin is empty.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *appConfig) error {
		if len(origins) == 0 {
			return errors.New("at least one origin is required")
		}
		for _, o := range origins {
			if strings.TrimSpace(o) == "" {
				return errors.New("origin cannot be empty")
			}
		}
		cfg.allowedOrigins = append([]string(nil), origins...)
		return nil
	}
}

// WithRateLimit enables per-client rate limiting.
//
// Each client IP gets a token bucket refilled at requestsPerSecond with
// capacity burst. Requests over the limit get 429 responses. Rate limiting
// is disabled by default.
//
// Returns an error if requestsPerSecond is not positive or burst is less than 1.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(cfg *appConfig) error {
		if requestsPerSecond <= 0 {
			return errors.New("rate limit must be positive")
		}
		if burst < 1 {
			return errors.New("burst must be at least 1")
		}
		cfg.rateLimit = requestsPerSecond
		cfg.burst = burst
		return nil
	}
}

// WithProfile sets the object served at /api/wrapped.
//
// Defaults to [DefaultProfile].
func WithProfile(p Profile) Option {
	return func(cfg *appConfig) error {
		cfg.profile = &p
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the App instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithChangeCallback registers a function to be called after every
// successful mutation of the todo collection.
//
// Multiple callbacks may be registered; they execute in registration order
// from a single goroutine. Callbacks must be non-blocking: a slow callback
// delays later changes, and changes that pile up beyond the feed buffer are
// dropped. Panics are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithChangeCallback(cb func(Change)) Option {
	return func(cfg *appConfig) error {
		if cb == nil {
			return nil
		}
		cfg.changeCallbacks = append(cfg.changeCallbacks, cb)
		return nil
	}
}
