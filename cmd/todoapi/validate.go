package main

import (
	"fmt"
	"strings"

	"github.com/jpalmerr/todoapi/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a todoapi configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  todoapi validate -c todoapi.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	title := cfg.Title
	if title == "" {
		title = "Todo API (default)"
	}

	seed := "4 (default sample todos)"
	if cfg.Seed != nil {
		seed = fmt.Sprintf("%d", len(cfg.Seed))
	}

	rateLimit := "disabled"
	if rl := cfg.RateLimit; rl != nil {
		rateLimit = fmt.Sprintf("%g req/s (burst %d)", rl.RequestsPerSecond, rl.Burst)
	}

	origins := "any"
	if len(cfg.AllowedOrigins) > 0 {
		origins = strings.Join(cfg.AllowedOrigins, ", ")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Title:         %s\n", title)
	fmt.Fprintf(out, "  Port:          %d\n", cfg.Port)
	fmt.Fprintf(out, "  Seed todos:    %s\n", seed)
	fmt.Fprintf(out, "  Rate limit:    %s\n", rateLimit)
	fmt.Fprintf(out, "  CORS origins:  %s\n", origins)
	fmt.Fprintf(out, "  Shutdown:      %s\n", cfg.ShutdownTimeout.Duration())

	return nil
}
