// Package todoapi provides an embeddable, in-memory todo REST API with a
// live change feed and a small web dashboard.
//
// # Quick Start
//
// Create an app and start it with graceful shutdown:
//
//	app, _ := todoapi.New(todoapi.WithPort(3000))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	app.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// App uses the functional options pattern:
//
//	app, err := todoapi.New(
//	    todoapi.WithPort(8080),
//	    todoapi.WithTitle("Team Todos"),
//	    todoapi.WithSeed(
//	        todoapi.SeedTodo{Text: "Write docs"},
//	        todoapi.SeedTodo{Text: "Ship it", Done: true},
//	    ),
//	    todoapi.WithAllowedOrigins("http://localhost:5173"),
//	    todoapi.WithRateLimit(20, 40),
//	)
//
// # API
//
// Every endpoint under /api/todos answers with a JSON envelope:
//
//	{"success": true, "data": {...}}
//	{"success": true, "count": 2, "data": [...]}
//	{"success": false, "error": "Todo not found"}
//
// Todos are kept in insertion order. Ids are assigned sequentially and never
// reused, even after deletes. Nothing is persisted: each [App.Start] begins
// from the seed again.
//
// # Change Feed
//
// Each successful mutation produces a [Change]. Changes are logged, passed to
// callbacks registered with [WithChangeCallback], and streamed to clients at
// /api/events (Server-Sent Events) and /api/ws (WebSocket).
//
// # Architecture
//
//   - internal/store: In-memory collection with pub/sub change feed
//   - internal/server: HTTP routes, middleware and change streams
//   - internal/client: HTTP client used by the CLI
//   - config: YAML configuration for the standalone binary
//   - dashboard: Embedded web UI assets
package todoapi
