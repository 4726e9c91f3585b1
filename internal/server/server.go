package server

import (
	"context"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jpalmerr/todoapi/internal/store"
)

const (
	// streamWriteTimeout is the maximum time allowed for a single SSE or
	// WebSocket write. Must be <= shutdown timeout to ensure clean shutdown.
	streamWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "Todo API"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"
)

// Config holds the settings for a [Server].
type Config struct {
	// Port is the TCP port to listen on.
	Port int

	// Title is the dashboard title (defaults to "Todo API" if empty).
	Title string

	// Assets contains assets/index.html. The dashboard route is not
	// registered when nil.
	Assets fs.FS

	// Profile is served as-is at /api/wrapped. The route is not registered
	// when nil.
	Profile any

	// AllowedOrigins lists CORS origins. Empty or "*" allows any origin.
	AllowedOrigins []string

	// RateLimit is the per-client request rate. Zero disables limiting.
	RateLimit rate.Limit

	// Burst is the per-client token bucket size.
	Burst int
}

// Server handles HTTP requests for the todo REST API, its live change
// streams and the dashboard.
//
// Routes:
//   - GET    /api/todos                  list
//   - GET    /api/todos/{id}             get
//   - POST   /api/todos                  create
//   - PUT    /api/todos/{id}             update
//   - PUT    /api/todos/{id}/toggle      toggle
//   - DELETE /api/todos/{id}             delete
//   - DELETE /api/todos/completed/clear  clear completed
//   - GET    /api/events                 Server-Sent Events change stream
//   - GET    /api/ws                     WebSocket change stream
//   - GET    /api/wrapped                static profile
//   - GET    /                           dashboard
//
// Everything else answers 404 with a "Route not found" envelope.
type Server struct {
	store      store.Store
	cfg        Config
	httpServer *http.Server
	limiters   *clientLimiters
	logger     *slog.Logger
	stopped    chan struct{}
}

// NewServer creates a new HTTP [Server] backed by st.
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:   st,
		cfg:     cfg,
		logger:  logger,
		stopped: make(chan struct{}),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiters = newClientLimiters(cfg.RateLimit, burst)
	}
	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/todos", s.handleList)
	mux.HandleFunc("GET /api/todos/{id}", s.handleGet)
	mux.HandleFunc("POST /api/todos", s.handleCreate)
	mux.HandleFunc("PUT /api/todos/{id}", s.handleUpdate)
	mux.HandleFunc("PUT /api/todos/{id}/toggle", s.handleToggle)
	mux.HandleFunc("DELETE /api/todos/{id}", s.handleDelete)
	mux.HandleFunc("DELETE /api/todos/completed/clear", s.handleClearCompleted)

	mux.HandleFunc("GET /api/events", s.handleSSE)
	mux.HandleFunc("GET /api/ws", s.handleWebSocket)

	if s.cfg.Profile != nil {
		mux.HandleFunc("GET /api/wrapped", s.handleProfile)
	}
	if s.cfg.Assets != nil {
		mux.HandleFunc("GET /{$}", s.handleDashboard)
	}

	// catch-all, matches any method so unknown routes never turn into 405s
	mux.HandleFunc("/", s.handleRouteNotFound)

	var h http.Handler = mux
	if s.limiters != nil {
		h = s.rateLimit(h)
	}
	h = s.cors(h)
	h = s.logRequests(h)
	h = s.recoverPanics(h)
	return h
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx, so streams end on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		defer close(s.stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Done is closed once a started server has finished shutting down and its
// port is released. It is never closed if Start failed or was not called.
func (s *Server) Done() <-chan struct{} {
	return s.stopped
}

// handleDashboard serves the dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	content, err := fs.ReadFile(s.cfg.Assets, "assets/index.html")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Dashboard not found")
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.cfg.Title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

// handleProfile returns the configured profile object.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Profile)
}

func (s *Server) handleRouteNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, msgRouteNotFound)
}
