package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/todoapi/internal/server"
	"github.com/jpalmerr/todoapi/internal/store"
)

func newTestAPI(t *testing.T) *Client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.NewServer(store.NewMemoryStore(), server.Config{}, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c := New(ts.URL+"/", time.Second)
	t.Cleanup(c.Close)
	return c
}

func TestClient_Lifecycle(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	todos, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(todos) != 4 {
		t.Fatalf("List() = %d todos, want 4", len(todos))
	}

	created, err := c.Create(ctx, "Write tests")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != 5 {
		t.Errorf("Create().ID = %d, want 5", created.ID)
	}

	toggled, err := c.Toggle(ctx, 5)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !toggled.Done {
		t.Error("Toggle().Done = false, want true")
	}

	msg, err := c.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted() error = %v", err)
	}
	if msg != "Cleared 3 completed todos" {
		t.Errorf("ClearCompleted() = %q", msg)
	}

	todos, _ = c.List(ctx)
	if len(todos) != 2 || todos[0].ID != 3 || todos[1].ID != 4 {
		t.Errorf("List() after clear = %+v, want ids 3 and 4", todos)
	}
}

func TestClient_Update(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	text := "Renamed"
	done := true
	got, err := c.Update(ctx, 3, &text, &done)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Text != "Renamed" || !got.Done {
		t.Errorf("Update() = %+v", got)
	}

	notDone := false
	got, err = c.Update(ctx, 3, nil, &notDone)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Text != "Renamed" || got.Done {
		t.Errorf("Update(done=false) = %+v, want text kept and done false", got)
	}
}

func TestClient_GetAndDelete(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	todo, err := c.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if todo.Text != "Learn Node.js" {
		t.Errorf("Get().Text = %q", todo.Text)
	}

	deleted, err := c.Delete(ctx, 1)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != 1 {
		t.Errorf("Delete().ID = %d, want 1", deleted.ID)
	}

	_, err = c.Get(ctx, 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Get() after delete error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Todo not found" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestClient_ValidationError(t *testing.T) {
	c := newTestAPI(t)

	_, err := c.Create(context.Background(), "   ")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Create() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "Text is required") {
		t.Errorf("Error() = %q, want to mention 'Text is required'", err.Error())
	}
}

func TestClient_NonJSONResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	c := New(ts.URL, time.Second)
	defer c.Close()

	_, err := c.List(context.Background())
	if err == nil {
		t.Fatal("List() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid response (HTTP 502)") {
		t.Errorf("error = %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c := New(ts.URL, 50*time.Millisecond)
	defer c.Close()

	start := time.Now()
	_, err := c.List(context.Background())
	if err == nil {
		t.Fatal("List() expected timeout error, got nil")
	}
	if time.Since(start) > time.Second {
		t.Errorf("List() took %v, want timeout around 50ms", time.Since(start))
	}
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := New("http://localhost:1", 0)
	c.Close()
	c.Close()

	var nilClient *Client
	nilClient.Close()
}
