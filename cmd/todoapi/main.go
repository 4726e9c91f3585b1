// Package main is the entry point for the todoapi CLI.
//
// The todo API can be run either as a library or as a standalone binary
// with optional YAML configuration. This CLI provides the standalone binary
// plus a set of client commands that talk to a running server.
//
// Usage:
//
//	todoapi serve [-c config.yaml]     # Start the API server
//	todoapi validate -c config.yaml    # Validate configuration
//	todoapi list                       # List todos on a running server
//	todoapi add "Buy milk"             # Create a todo
//	todoapi version                    # Show version info
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultAddr          = "http://localhost:3000"
	defaultClientTimeout = 10 * time.Second
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "todoapi",
	Short: "An in-memory todo REST API",
	Long: `todoapi serves a small in-memory todo list over a JSON REST API,
with a browser dashboard and live change streams (SSE and WebSocket).

Quick start:
  1. Run: todoapi serve
  2. Open http://localhost:3000 in your browser
  3. Or use the client commands: todoapi list, todoapi add "Buy milk"

The collection starts from four sample todos on every start and is never
persisted.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this todoapi binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "todoapi %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	addr := os.Getenv("TODOAPI_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	rootCmd.PersistentFlags().String("addr", addr, "base URL of the todo API for client commands (env TODOAPI_ADDR)")
	rootCmd.PersistentFlags().Duration("timeout", defaultClientTimeout, "request timeout for client commands")

	rootCmd.AddCommand(versionCmd)
}
