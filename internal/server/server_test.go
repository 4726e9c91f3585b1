package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jpalmerr/todoapi/internal/store"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// response mirrors Envelope with a raw payload for decoding in tests.
type response struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func newTestServer(cfg Config) (*Server, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewServer(st, cfg, testLogger()), st
}

// do sends a request through the full middleware chain.
func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, resp
}

func decodeTodo(t *testing.T, raw json.RawMessage) store.Todo {
	t.Helper()
	var todo store.Todo
	if err := json.Unmarshal(raw, &todo); err != nil {
		t.Fatalf("invalid todo payload %s: %v", raw, err)
	}
	return todo
}

func decodeTodos(t *testing.T, raw json.RawMessage) []store.Todo {
	t.Helper()
	var todos []store.Todo
	if err := json.Unmarshal(raw, &todos); err != nil {
		t.Fatalf("invalid todo list payload %s: %v", raw, err)
	}
	return todos
}

func TestHandleList(t *testing.T) {
	srv, _ := newTestServer(Config{})

	rec, resp := do(t, srv.Handler(), http.MethodGet, "/api/todos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Count == nil || *resp.Count != 4 {
		t.Errorf("count = %v, want 4", resp.Count)
	}

	todos := decodeTodos(t, resp.Data)
	for i, todo := range todos {
		if todo.ID != i+1 {
			t.Errorf("todos[%d].ID = %d, want %d", i, todo.ID, i+1)
		}
	}
}

func TestHandleList_EmptyCollection(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(store.WithSeed(nil)), Config{}, testLogger())

	rec, _ := do(t, srv.Handler(), http.MethodGet, "/api/todos", "")

	body := rec.Body.String()
	if !strings.Contains(body, `"count":0`) {
		t.Errorf("body should contain count 0, got: %s", body)
	}
	if !strings.Contains(body, `"data":[]`) {
		t.Errorf("body should contain an empty data array, got: %s", body)
	}
}

func TestHandleGet(t *testing.T) {
	srv, _ := newTestServer(Config{})
	h := srv.Handler()

	rec, resp := do(t, h, http.MethodGet, "/api/todos/2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	todo := decodeTodo(t, resp.Data)
	if todo.ID != 2 || todo.Text != "Build a REST API" || !todo.Done {
		t.Errorf("todo = %+v", todo)
	}
}

func TestHandleGet_NotFound(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing id", "/api/todos/999"},
		{"non-numeric id", "/api/todos/abc"},
		{"numeric prefix", "/api/todos/1abc"},
		{"negative id", "/api/todos/-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(Config{})

			rec, resp := do(t, srv.Handler(), http.MethodGet, tt.path, "")
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
			if resp.Success || resp.Error != "Todo not found" {
				t.Errorf("envelope = %+v, want Todo not found failure", resp)
			}
		})
	}
}

func TestHandleCreate(t *testing.T) {
	srv, st := newTestServer(Config{})

	rec, resp := do(t, srv.Handler(), http.MethodPost, "/api/todos", `{"text":"  Write tests  "}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}

	todo := decodeTodo(t, resp.Data)
	if todo.ID != 5 || todo.Text != "Write tests" || todo.Done {
		t.Errorf("todo = %+v, want id 5 text 'Write tests' pending", todo)
	}
	if todo.CreatedAt.IsZero() {
		t.Error("createdAt is zero")
	}
	if len(st.List()) != 5 {
		t.Errorf("store size = %d, want 5", len(st.List()))
	}
}

func TestHandleCreate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"blank text", `{"text":"   "}`, "Text is required"},
		{"empty text", `{"text":""}`, "Text is required"},
		{"missing text", `{}`, "Text is required"},
		{"null text", `{"text":null}`, "Text is required"},
		{"no body", ``, "Text is required"},
		{"wrong type", `{"text":42}`, "Invalid JSON body"},
		{"malformed", `{"text":`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, st := newTestServer(Config{})

			rec, resp := do(t, srv.Handler(), http.MethodPost, "/api/todos", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if resp.Success || resp.Error != tt.wantErr {
				t.Errorf("envelope = %+v, want error %q", resp, tt.wantErr)
			}
			if len(st.List()) != 4 {
				t.Errorf("store size = %d, want 4 (unchanged)", len(st.List()))
			}
		})
	}
}

func TestHandleUpdate(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
		wantDone bool
	}{
		{"text", `{"text":" Ship it "}`, "Ship it", false},
		{"done", `{"done":true}`, "Connect to React frontend", true},
		{"both", `{"text":"Both","done":true}`, "Both", true},
		{"empty object", `{}`, "Connect to React frontend", false},
		{"no body", ``, "Connect to React frontend", false},
		{"blank text ignored", `{"text":"  "}`, "Connect to React frontend", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(Config{})

			rec, resp := do(t, srv.Handler(), http.MethodPut, "/api/todos/3", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			todo := decodeTodo(t, resp.Data)
			if todo.Text != tt.wantText || todo.Done != tt.wantDone {
				t.Errorf("todo = %+v, want text %q done %v", todo, tt.wantText, tt.wantDone)
			}
		})
	}
}

func TestHandleUpdate_Errors(t *testing.T) {
	srv, _ := newTestServer(Config{})
	h := srv.Handler()

	rec, resp := do(t, h, http.MethodPut, "/api/todos/999", `{"done":true}`)
	if rec.Code != http.StatusNotFound || resp.Error != "Todo not found" {
		t.Errorf("missing id: status = %d, envelope = %+v", rec.Code, resp)
	}

	rec, resp = do(t, h, http.MethodPut, "/api/todos/3", `{"done":"yes"}`)
	if rec.Code != http.StatusBadRequest || resp.Error != "Invalid JSON body" {
		t.Errorf("wrong type: status = %d, envelope = %+v", rec.Code, resp)
	}
}

func TestHandleToggle(t *testing.T) {
	srv, _ := newTestServer(Config{})
	h := srv.Handler()

	_, resp := do(t, h, http.MethodPut, "/api/todos/3/toggle", "")
	if todo := decodeTodo(t, resp.Data); !todo.Done {
		t.Error("first toggle: done = false, want true")
	}

	_, resp = do(t, h, http.MethodPut, "/api/todos/3/toggle", "")
	if todo := decodeTodo(t, resp.Data); todo.Done {
		t.Error("second toggle: done = true, want false")
	}

	rec, resp := do(t, h, http.MethodPut, "/api/todos/999/toggle", "")
	if rec.Code != http.StatusNotFound || resp.Error != "Todo not found" {
		t.Errorf("missing id: status = %d, envelope = %+v", rec.Code, resp)
	}
}

func TestHandleDelete(t *testing.T) {
	srv, st := newTestServer(Config{})
	h := srv.Handler()

	rec, resp := do(t, h, http.MethodDelete, "/api/todos/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if todo := decodeTodo(t, resp.Data); todo.ID != 1 {
		t.Errorf("deleted todo id = %d, want 1", todo.ID)
	}
	if len(st.List()) != 3 {
		t.Errorf("store size = %d, want 3", len(st.List()))
	}

	rec, resp = do(t, h, http.MethodDelete, "/api/todos/1", "")
	if rec.Code != http.StatusNotFound || resp.Error != "Todo not found" {
		t.Errorf("second delete: status = %d, envelope = %+v", rec.Code, resp)
	}
}

func TestHandleClearCompleted(t *testing.T) {
	srv, _ := newTestServer(Config{})
	h := srv.Handler()

	rec, resp := do(t, h, http.MethodDelete, "/api/todos/completed/clear", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !resp.Success || resp.Message != "Cleared 2 completed todos" {
		t.Errorf("envelope = %+v", resp)
	}

	_, resp = do(t, h, http.MethodDelete, "/api/todos/completed/clear", "")
	if resp.Message != "Cleared 0 completed todos" {
		t.Errorf("second clear message = %q", resp.Message)
	}
}

// TestTodoLifecycle walks seed → create → toggle → clear → list.
func TestTodoLifecycle(t *testing.T) {
	srv, _ := newTestServer(Config{})
	h := srv.Handler()

	rec, resp := do(t, h, http.MethodPost, "/api/todos", `{"text":"Write tests"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	if todo := decodeTodo(t, resp.Data); todo.ID != 5 || todo.Done {
		t.Fatalf("created = %+v, want id 5 pending", todo)
	}

	_, resp = do(t, h, http.MethodPut, "/api/todos/5/toggle", "")
	if todo := decodeTodo(t, resp.Data); !todo.Done {
		t.Fatal("toggle did not mark id 5 done")
	}

	_, resp = do(t, h, http.MethodDelete, "/api/todos/completed/clear", "")
	if resp.Message != "Cleared 3 completed todos" {
		t.Errorf("clear message = %q, want 'Cleared 3 completed todos'", resp.Message)
	}

	_, resp = do(t, h, http.MethodGet, "/api/todos", "")
	todos := decodeTodos(t, resp.Data)
	if len(todos) != 2 || todos[0].ID != 3 || todos[1].ID != 4 {
		t.Errorf("remaining todos = %+v, want ids 3 and 4", todos)
	}
	if resp.Count == nil || *resp.Count != 2 {
		t.Errorf("count = %v, want 2", resp.Count)
	}
}

func TestRouteNotFound(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/api"},
		{http.MethodGet, "/api/todos/"},
		{http.MethodPatch, "/api/todos/1"},
		{http.MethodPost, "/api/todos/1"},
		{http.MethodPut, "/api/todos/completed/clear"},
		{http.MethodGet, "/api/todos/1/toggle"},
		{http.MethodGet, "/"}, // no dashboard assets configured
		{http.MethodGet, "/api/wrapped"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			srv, _ := newTestServer(Config{})

			rec, resp := do(t, srv.Handler(), tt.method, tt.path, "")
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
			if resp.Success || resp.Error != "Route not found" {
				t.Errorf("envelope = %+v, want Route not found", resp)
			}
		})
	}
}

func TestHandleDashboard(t *testing.T) {
	assets := fstest.MapFS{
		"assets/index.html": {Data: []byte("<title>{{.Title}}</title>")},
	}

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"default title", "", "<title>Todo API</title>"},
		{"custom title", "My Todos", "<title>My Todos</title>"},
		{"escaped title", "<script>x</script>", "<title>&lt;script&gt;x&lt;/script&gt;</title>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(Config{Assets: assets, Title: tt.title})

			rec, _ := do(t, srv.Handler(), http.MethodGet, "/", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q, want text/html", ct)
			}
		})
	}
}

func TestHandleDashboard_MissingIndex(t *testing.T) {
	srv, _ := newTestServer(Config{Assets: fstest.MapFS{}})

	rec, resp := do(t, srv.Handler(), http.MethodGet, "/", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if resp.Error != "Dashboard not found" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestHandleProfile(t *testing.T) {
	profile := map[string]any{"rating": "7.5/10", "user": map[string]string{"name": "Ada"}}
	srv, _ := newTestServer(Config{Profile: profile})

	req := httptest.NewRequest(http.MethodGet, "/api/wrapped", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["rating"] != "7.5/10" {
		t.Errorf("rating = %v, want 7.5/10", got["rating"])
	}
	if _, wrapped := got["success"]; wrapped {
		t.Error("profile should be served without an envelope")
	}
}

func TestCORS(t *testing.T) {
	t.Run("wildcard by default", func(t *testing.T) {
		srv, _ := newTestServer(Config{})

		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		req.Header.Set("Origin", "http://example.com")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
	})

	t.Run("configured origins", func(t *testing.T) {
		srv, _ := newTestServer(Config{AllowedOrigins: []string{"http://localhost:5173"}})
		h := srv.Handler()

		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Allow-Origin = %q, want http://localhost:5173", got)
		}

		req = httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty for disallowed origin", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		srv, _ := newTestServer(Config{})

		req := httptest.NewRequest(http.MethodOptions, "/api/todos/1", nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", "PUT")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "PUT") {
			t.Errorf("Allow-Methods = %q, want to contain PUT", got)
		}
	})
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(Config{RateLimit: 1, Burst: 2})
	h := srv.Handler()

	for i := 0; i < 2; i++ {
		rec, _ := do(t, h, http.MethodGet, "/api/todos", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}

	rec, resp := do(t, h, http.MethodGet, "/api/todos", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if resp.Error != "Rate limit exceeded" {
		t.Errorf("error = %q", resp.Error)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q, want 1", rec.Header().Get("Retry-After"))
	}

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_DisabledByDefault(t *testing.T) {
	srv, _ := newTestServer(Config{})
	h := srv.Handler()

	for i := 0; i < 50; i++ {
		rec, _ := do(t, h, http.MethodGet, "/api/todos", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestClientLimiters_PurgesIdleEntries(t *testing.T) {
	now := time.Now()
	cl := newClientLimiters(1, 1)
	cl.now = func() time.Time { return now }

	cl.get("a")
	cl.get("b")
	if cl.size() != 2 {
		t.Fatalf("size = %d, want 2", cl.size())
	}

	now = now.Add(limiterIdleTTL + limiterSweepInterval)
	cl.get("c")
	if cl.size() != 1 {
		t.Errorf("size after sweep = %d, want 1", cl.size())
	}
}

// panicStore panics on List to exercise the recovery middleware.
type panicStore struct {
	store.Store
}

func (panicStore) List() []store.Todo {
	panic("boom")
}

func TestRecoverPanics(t *testing.T) {
	srv := NewServer(panicStore{}, Config{}, testLogger())

	rec, resp := do(t, srv.Handler(), http.MethodGet, "/api/todos", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if resp.Success || !strings.HasPrefix(resp.Error, "Internal server error (correlation_id: ") {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestRequestID(t *testing.T) {
	srv, _ := newTestServer(Config{})
	h := srv.Handler()

	rec, _ := do(t, h, http.MethodGet, "/api/todos", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestHandleSSE_StreamsChanges(t *testing.T) {
	srv, st := newTestServer(Config{})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.Handler().ServeHTTP(rec, req)
		close(done)
	}()

	// give handler time to subscribe
	time.Sleep(50 * time.Millisecond)

	_, _ = st.Create("streamed")
	_, _ = st.Toggle(1)

	// give time for changes to be written
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit after context cancellation")
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	var changes []store.Change
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var c store.Change
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &c); err != nil {
			t.Fatalf("invalid change JSON %q: %v", line, err)
		}
		changes = append(changes, c)
	}

	if len(changes) != 2 {
		t.Fatalf("received %d changes, want 2\nbody: %s", len(changes), rec.Body.String())
	}
	if changes[0].Kind != store.ChangeCreated || changes[0].Todo.Text != "streamed" {
		t.Errorf("changes[0] = %+v", changes[0])
	}
	if changes[1].Kind != store.ChangeToggled || changes[1].Todo.ID != 1 {
		t.Errorf("changes[1] = %+v", changes[1])
	}
}

func TestHandleSSE_ServerShutdown(t *testing.T) {
	srv, _ := newTestServer(Config{})

	serverCtx, serverCancel := context.WithCancel(context.Background())

	numClients := 5
	var wg sync.WaitGroup
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(serverCtx)
			srv.handleSSE(httptest.NewRecorder(), req)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	serverCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all handlers exited after shutdown")
	}
}

func TestHandleSSE_NotSupported(t *testing.T) {
	srv, _ := newTestServer(Config{})

	w := &nonFlushWriter{header: make(http.Header)}
	srv.handleSSE(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if w.statusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.statusCode, http.StatusInternalServerError)
	}
}

type nonFlushWriter struct {
	header     http.Header
	statusCode int
	body       []byte
}

func (n *nonFlushWriter) Header() http.Header { return n.header }

func (n *nonFlushWriter) Write(b []byte) (int, error) {
	n.body = append(n.body, b...)
	return len(b), nil
}

func (n *nonFlushWriter) WriteHeader(statusCode int) { n.statusCode = statusCode }

func dialWS(t *testing.T, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	_ = resp.Body.Close()
	return conn
}

func TestHandleWebSocket_StreamsChanges(t *testing.T) {
	srv, st := newTestServer(Config{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts, nil)
	defer func() { _ = conn.Close() }()

	if _, err := st.Create("over the wire"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	st.ClearCompleted()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var created store.Change
	if err := conn.ReadJSON(&created); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if created.Kind != store.ChangeCreated || created.Todo == nil || created.Todo.ID != 5 {
		t.Errorf("first change = %+v, want created id 5", created)
	}

	var cleared store.Change
	if err := conn.ReadJSON(&cleared); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if cleared.Kind != store.ChangeCleared || cleared.Removed != 2 {
		t.Errorf("second change = %+v, want cleared 2", cleared)
	}
}

func TestHandleWebSocket_RejectsDisallowedOrigin(t *testing.T) {
	srv, _ := newTestServer(Config{AllowedOrigins: []string{"http://good.example"}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	header := http.Header{"Origin": []string{"http://evil.example"}}

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		_ = conn.Close()
		t.Fatal("Dial() succeeded, want handshake failure")
	}
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
	}

	good := dialWS(t, ts, http.Header{"Origin": []string{"http://good.example"}})
	_ = good.Close()
}

func TestStart_ServesAndShutsDown(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), Config{Port: 19101}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://localhost:19101/api/todos")
	if err != nil {
		cancel()
		t.Fatalf("GET error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case <-srv.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done() not closed after shutdown")
	}

	if _, err := http.Get("http://localhost:19101/api/todos"); err == nil {
		t.Error("server still accepting connections after shutdown")
	}
}

func TestStart_PortInUse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := NewServer(store.NewMemoryStore(), Config{Port: 19102}, testLogger())
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}

	second := NewServer(store.NewMemoryStore(), Config{Port: 19102}, testLogger())
	err := second.Start(ctx)
	if err == nil {
		t.Fatal("second Start() expected error for port in use, got nil")
	}
	if !strings.Contains(err.Error(), "failed to bind") {
		t.Errorf("error = %v, want 'failed to bind'", err)
	}
}
