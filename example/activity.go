package main

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jpalmerr/todoapi/internal/client"
)

var chores = []string{
	"Water the plants",
	"Reply to emails",
	"Review pull request",
	"Book dentist appointment",
	"Buy groceries",
	"Write weekly notes",
}

// SimulateActivity drives the API like a user would, so the dashboard has
// something to show. Each step happens 2-6 seconds after the previous one.
// Runs until ctx is cancelled.
func SimulateActivity(ctx context.Context, baseURL string, logger *slog.Logger) {
	c := client.New(baseURL, 2*time.Second)
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(2+rand.Intn(5)) * time.Second):
		}

		todos, err := c.List(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("simulated user: list failed", "error", err)
			}
			continue
		}

		switch {
		case len(todos) > 6:
			_, err = c.ClearCompleted(ctx)
		case len(todos) > 0 && rand.Intn(2) == 0:
			_, err = c.Toggle(ctx, todos[rand.Intn(len(todos))].ID)
		default:
			_, err = c.Create(ctx, chores[rand.Intn(len(chores))])
		}
		if err != nil && ctx.Err() == nil {
			logger.Warn("simulated user: request failed", "error", err)
		}
	}
}
