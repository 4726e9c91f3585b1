package todoapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/jpalmerr/todoapi/dashboard"
	"github.com/jpalmerr/todoapi/internal/server"
	"github.com/jpalmerr/todoapi/internal/store"
)

const (
	defaultPort  = 3000
	defaultTitle = "Todo API"
)

// App serves the todo REST API, its change streams and the dashboard.
//
// App is created using [New] with functional options and started with
// [App.Start]. Every start begins from the configured seed; nothing is
// persisted across restarts.
//
//	app, err := todoapi.New(todoapi.WithPort(3000))
//	if err != nil {
//	    slog.Error("failed to create app", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	app.Start(ctx) // blocks until context cancelled
type App struct {
	title           string
	port            int
	seed            []SeedTodo
	allowedOrigins  []string
	rateLimit       float64
	burst           int
	profile         Profile
	logger          *slog.Logger
	changeCallbacks []func(Change)
}

// New creates a new [App] with the given options.
//
// Defaults:
//   - Port: 3000
//   - Title: "Todo API"
//   - Seed: four sample todos (ids 1-4, the first two done)
//   - CORS: any origin
//   - Rate limiting: disabled
//   - Profile: [DefaultProfile]
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*App, error) {
	cfg := &appConfig{
		title: defaultTitle,
		port:  defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	seed := cfg.seed
	if !cfg.seedSet {
		for _, s := range store.DefaultSeed() {
			seed = append(seed, SeedTodo{Text: s.Text, Done: s.Done})
		}
	}

	profile := DefaultProfile()
	if cfg.profile != nil {
		profile = *cfg.profile
	}

	return &App{
		title:           cfg.title,
		port:            cfg.port,
		seed:            seed,
		allowedOrigins:  cfg.allowedOrigins,
		rateLimit:       cfg.rateLimit,
		burst:           cfg.burst,
		profile:         profile,
		logger:          logger,
		changeCallbacks: cfg.changeCallbacks,
	}, nil
}

// Start seeds a fresh collection and serves it until ctx is cancelled.
//
// Start is a blocking call. Every change to the collection is logged and
// passed to the registered change callbacks. Returns nil on graceful
// shutdown, or an error if the HTTP server fails to start.
func (a *App) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	todos := a.newStore()

	changes := todos.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for c := range changes {
			a.handleChange(c)
		}
	}()

	// cleanup closes the change feed and waits for queued changes to drain
	cleanup := func() {
		todos.Unsubscribe(changes)
		wg.Wait()
	}

	httpServer := server.NewServer(todos, a.serverConfig(), a.logger)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	a.logger.Info("todo api running",
		"url", fmt.Sprintf("http://localhost:%d", a.port),
		"todos", len(a.seed),
	)
	for _, route := range routes {
		a.logger.Info("route", "method", route.method, "path", route.path, "description", route.description)
	}

	<-ctx.Done()
	<-httpServer.Done()
	cleanup()
	a.logger.Info("todo api stopped")
	return nil
}

// Handler returns an http.Handler serving the API over a freshly seeded
// collection, for mounting inside another server. Change callbacks are not
// invoked for changes made through it.
func (a *App) Handler() http.Handler {
	return server.NewServer(a.newStore(), a.serverConfig(), a.logger).Handler()
}

// Port returns the configured HTTP port.
func (a *App) Port() int {
	return a.port
}

// Title returns the configured dashboard title.
func (a *App) Title() string {
	return a.title
}

// Seed returns a copy of the todos the collection starts with.
func (a *App) Seed() []SeedTodo {
	cp := make([]SeedTodo, len(a.seed))
	copy(cp, a.seed)
	return cp
}

func (a *App) newStore() *store.MemoryStore {
	seed := make([]store.Seed, len(a.seed))
	for i, s := range a.seed {
		seed[i] = store.Seed{Text: s.Text, Done: s.Done}
	}
	return store.NewMemoryStore(store.WithSeed(seed))
}

func (a *App) serverConfig() server.Config {
	profile := a.profile
	return server.Config{
		Port:           a.port,
		Title:          a.title,
		Assets:         dashboard.Assets,
		Profile:        &profile,
		AllowedOrigins: a.allowedOrigins,
		RateLimit:      rate.Limit(a.rateLimit),
		Burst:          a.burst,
	}
}

// handleChange logs a change and fans it out to the callbacks.
func (a *App) handleChange(c store.Change) {
	attrs := []any{"kind", string(c.Kind)}
	if c.Todo != nil {
		attrs = append(attrs, "id", c.Todo.ID, "text", c.Todo.Text, "done", c.Todo.Done)
	}
	if c.Kind == store.ChangeCleared {
		attrs = append(attrs, "removed", c.Removed)
	}
	a.logger.Info("todo "+string(c.Kind), attrs...)

	for _, cb := range a.changeCallbacks {
		invokeCallbackSafe(cb, toPublicChange(c), a.logger)
	}
}

// toPublicChange converts a store change to the public type. Each call
// returns a fresh copy.
func toPublicChange(c store.Change) Change {
	out := Change{
		Kind:    ChangeKind(c.Kind),
		Removed: c.Removed,
		At:      c.At,
	}
	if c.Todo != nil {
		out.Todo = &Todo{
			ID:        c.Todo.ID,
			Text:      c.Todo.Text,
			Done:      c.Todo.Done,
			CreatedAt: c.Todo.CreatedAt,
		}
	}
	return out
}

// invokeCallbackSafe calls a change callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Change), c Change, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("change callback panicked",
				"panic", r,
				"kind", string(c.Kind),
			)
		}
	}()
	cb(c)
}

type route struct {
	method      string
	path        string
	description string
}

// routes is logged on startup.
var routes = []route{
	{"GET", "/api/todos", "list todos"},
	{"GET", "/api/todos/{id}", "get todo"},
	{"POST", "/api/todos", "create todo"},
	{"PUT", "/api/todos/{id}", "update todo"},
	{"PUT", "/api/todos/{id}/toggle", "toggle done"},
	{"DELETE", "/api/todos/{id}", "delete todo"},
	{"DELETE", "/api/todos/completed/clear", "clear completed todos"},
	{"GET", "/api/events", "change stream (SSE)"},
	{"GET", "/api/ws", "change stream (WebSocket)"},
	{"GET", "/api/wrapped", "profile"},
}
