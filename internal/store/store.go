package store

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no todo with the requested id exists.
	ErrNotFound = errors.New("todo not found")

	// ErrValidation is returned when a required field is missing or blank.
	ErrValidation = errors.New("validation failed")
)

// Todo is the storage representation of a single todo item.
//
// The JSON field names match the REST API contract.
type Todo struct {
	// ID is assigned by the store and never reused within a process.
	ID int `json:"id"`

	// Text is the trimmed, non-empty description.
	Text string `json:"text"`

	// Done reports whether the todo is completed.
	Done bool `json:"done"`

	// CreatedAt is fixed when the todo is created.
	CreatedAt time.Time `json:"createdAt"`
}

// Patch describes a partial update. Nil fields are left unchanged.
type Patch struct {
	Text *string
	Done *bool
}

// ChangeKind identifies the mutation that produced a [Change].
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeToggled ChangeKind = "toggled"
	ChangeDeleted ChangeKind = "deleted"
	ChangeCleared ChangeKind = "cleared"
)

// Change is published to subscribers after every successful mutation.
type Change struct {
	Kind ChangeKind `json:"kind"`

	// Todo is the affected todo. Nil for [ChangeCleared].
	Todo *Todo `json:"todo,omitempty"`

	// Removed is the number of todos removed by [ChangeCleared].
	Removed int `json:"removed,omitempty"`

	At time.Time `json:"at"`
}

// Seed is an initial todo loaded when a store is created.
type Seed struct {
	Text string
	Done bool
}

// DefaultSeed returns the four sample todos a fresh store starts with.
func DefaultSeed() []Seed {
	return []Seed{
		{Text: "Learn Node.js", Done: true},
		{Text: "Build a REST API", Done: true},
		{Text: "Connect to React frontend", Done: false},
		{Text: "Deploy to production", Done: false},
	}
}

// Store defines the todo collection operations used by the HTTP layer.
//
// Store implementations must be safe for concurrent access. Todos returned
// by any method are copies; mutating them does not affect the store.
type Store interface {
	// List returns all todos in insertion order.
	List() []Todo

	// Get returns the todo with the given id or [ErrNotFound].
	Get(id int) (Todo, error)

	// Create appends a new pending todo. Returns [ErrValidation] if text is
	// blank after trimming.
	Create(text string) (Todo, error)

	// Update applies the non-nil fields of patch. A text that is blank after
	// trimming is ignored.
	Update(id int, patch Patch) (Todo, error)

	// Toggle flips the done flag.
	Toggle(id int) (Todo, error)

	// Delete removes the todo and returns the removed record.
	Delete(id int) (Todo, error)

	// ClearCompleted removes every done todo and returns how many were removed.
	ClearCompleted() int

	// Subscribe returns a channel that receives changes.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Change

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Change)
}
