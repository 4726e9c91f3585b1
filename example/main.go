package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/todoapi"
)

const port = 8080

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	app, err := todoapi.New(
		todoapi.WithPort(port),
		todoapi.WithTitle("Todo API Demo"),
		todoapi.WithSeed(
			todoapi.SeedTodo{Text: "Read the README", Done: true},
			todoapi.SeedTodo{Text: "Open the dashboard"},
			todoapi.SeedTodo{Text: "Watch the live updates"},
		),
		todoapi.WithRateLimit(20, 40),
		todoapi.WithLogger(logger),
		todoapi.WithChangeCallback(func(c todoapi.Change) {
			if c.Kind == todoapi.ChangeCleared {
				fmt.Printf("  %s  cleared %d\n", c.At.Format(time.TimeOnly), c.Removed)
				return
			}
			fmt.Printf("  %s  %-8s #%d %q\n", c.At.Format(time.TimeOnly), c.Kind, c.Todo.ID, c.Todo.Text)
		}),
	)
	if err != nil {
		slog.Error("failed to create app", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Todo API Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   A simulated user adds, toggles and clears todos     ║")
	fmt.Println("  ║   every few seconds; changes are printed below.       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go SimulateActivity(ctx, fmt.Sprintf("http://localhost:%d", port), logger)

	if err := app.Start(ctx); err != nil {
		slog.Error("todo api error", "error", err)
		os.Exit(1)
	}
}
